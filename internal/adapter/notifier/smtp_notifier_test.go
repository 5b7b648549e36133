package notifier

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vamazon/storefront/internal/config"
	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

// fakeSMTPServer accepts one connection, speaks just enough SMTP for a
// single delivery, and reports the DATA payload it received.
func fakeSMTPServer(t *testing.T) (config.SMTPConfig, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)
		fmt.Fprintf(conn, "220 fake ESMTP\r\n")

		var data strings.Builder
		inData := false
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if strings.TrimRight(line, "\r\n") == "." {
					inData = false
					received <- data.String()
					fmt.Fprintf(conn, "250 OK\r\n")
					continue
				}
				data.WriteString(line)
				continue
			}

			switch cmd := strings.ToUpper(strings.TrimRight(line, "\r\n")); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				fmt.Fprintf(conn, "250 fake\r\n")
			case strings.HasPrefix(cmd, "DATA"):
				inData = true
				fmt.Fprintf(conn, "354 go ahead\r\n")
			case strings.HasPrefix(cmd, "QUIT"):
				fmt.Fprintf(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprintf(conn, "250 OK\r\n")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	return config.SMTPConfig{Host: host, Port: portStr, From: "orders@vamazon.test"}, received
}

func testConfirmation() port.OrderConfirmation {
	return port.OrderConfirmation{
		ToEmail:      "asha@example.com",
		CustomerName: "Asha Rao",
		OrderNumber:  "ORD-20260829-3FA85F64",
		Items: []port.ConfirmationItem{
			{Name: "Product A", Quantity: 2, LineTotal: decimal.RequireFromString("20.00")},
		},
		TotalAmount: decimal.RequireFromString("20.00"),
		Shipping: domain.ShippingAddress{
			CustomerName: "Asha Rao",
			AddressLine1: "14 MG Road",
			City:         "Bengaluru",
			State:        "KA",
			Pincode:      "560001",
		},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	cfg, received := fakeSMTPServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := NewSMTPNotifier(cfg).SendOrderConfirmation(ctx, testConfirmation()); err != nil {
		t.Fatalf("SendOrderConfirmation failed: %v", err)
	}

	select {
	case data := <-received:
		if !strings.Contains(data, "Subject: Order Confirmed - ORD-20260829-3FA85F64 | Vamazon") {
			t.Errorf("missing subject, got:\n%s", data)
		}
		if !strings.Contains(data, "To: asha@example.com") {
			t.Errorf("missing recipient, got:\n%s", data)
		}
		if !strings.Contains(data, "Product A") {
			t.Errorf("missing item name, got:\n%s", data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestSendOrderConfirmation_CanceledContext(t *testing.T) {
	cfg, _ := fakeSMTPServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewSMTPNotifier(cfg).SendOrderConfirmation(ctx, testConfirmation()); err == nil {
		t.Error("expected an error with a canceled context")
	}
}

func TestBuildMessage_TruncatesLongNames(t *testing.T) {
	msg := testConfirmation()
	msg.Items[0].Name = strings.Repeat("x", 80)

	body := buildMessage("orders@vamazon.test", msg)
	if !strings.Contains(body, strings.Repeat("x", 50)+"...") {
		t.Error("expected the item name to be truncated at 50 characters")
	}
	if strings.Contains(body, strings.Repeat("x", 51)) {
		t.Error("item name was not truncated")
	}
}
