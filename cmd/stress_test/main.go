// Command stress_test fires concurrent buy-now checkouts at a running
// server and verifies that successes never exceed the available stock.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vamazon/storefront/internal/auth"
)

const (
	defaultBaseURL = "http://localhost:8080"
	totalRequests  = 50
	userID         = 1
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	productID := int64(1)

	token, err := auth.NewProvider(secret, time.Hour).Sign(userID)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"product_id":    productID,
		"quantity":      1,
		"customer_name": "Stress Tester",
		"email":         "stress@vamazon.test",
		"address_line1": "1 Load Lane",
		"city":          "Bengaluru",
		"state":         "KA",
		"pincode":       "560001",
	})

	client := &http.Client{Timeout: 10 * time.Second}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequest(http.MethodPost, baseURL+"/api/orders/buy-now", bytes.NewReader(payload))
			if err != nil {
				failCount.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := client.Do(req)
			if err != nil {
				failCount.Add(1)
				return
			}
			resp.Body.Close()

			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")
}
