package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vamazon/storefront/internal/core/domain"
)

type ShippingRequest struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

func (s ShippingRequest) validate() string {
	switch {
	case len(s.CustomerName) < 2:
		return "customer_name is required"
	case s.AddressLine1 == "":
		return "address_line1 is required"
	case s.City == "":
		return "city is required"
	case s.State == "":
		return "state is required"
	case s.Pincode == "":
		return "pincode is required"
	}
	return ""
}

func (s ShippingRequest) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		CustomerName: s.CustomerName,
		Email:        s.Email,
		Phone:        s.Phone,
		AddressLine1: s.AddressLine1,
		AddressLine2: s.AddressLine2,
		City:         s.City,
		State:        s.State,
		Pincode:      s.Pincode,
	}
}

type CheckoutCartRequest struct {
	SessionID string `json:"session_id"`
	ShippingRequest
}

type BuyNowRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	ShippingRequest
}

func (h *HTTPHandler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CheckoutCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := h.checkout.CheckoutCart(r.Context(), req.SessionID, req.toDomain(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req BuyNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := h.checkout.BuyNow(r.Context(), req.ProductID, req.Quantity, req.toDomain(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.checkout.ListOrders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
