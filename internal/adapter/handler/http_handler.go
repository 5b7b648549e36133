package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vamazon/storefront/internal/auth"
	"github.com/vamazon/storefront/internal/core/service"
	"github.com/vamazon/storefront/internal/port"
)

type HTTPHandler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	auth     *auth.Provider
}

func NewHTTPHandler(carts *service.CartService, checkout *service.CheckoutService, authProvider *auth.Provider) *HTTPHandler {
	return &HTTPHandler{
		carts:    carts,
		checkout: checkout,
		auth:     authProvider,
	}
}

func (h *HTTPHandler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products/{productID}", h.GetProduct)

		r.Route("/cart/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{itemID}", h.UpdateCartItem)
			r.Delete("/items/{itemID}", h.RemoveCartItem)
			r.Delete("/", h.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderNumber}", h.GetOrder)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(h.auth))
				r.Post("/", h.CheckoutCart)
				r.Post("/buy-now", h.BuyNow)
				r.Get("/", h.ListOrders)
			})
		})
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps domain failures onto HTTP statuses;
// anything unrecognized is a server-side failure with no detail leaked.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrStatusNotForward):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, port.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, service.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, port.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart not found")
	case errors.Is(err, port.ErrCartItemNotFound):
		respondError(w, http.StatusNotFound, "cart item not found")
	case errors.Is(err, port.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
