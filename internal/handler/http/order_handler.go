package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

type CreateOrderRequest struct {
	CartID string `json:"cartId" validate:"required"`
}

// UpdateOrderRequest mutates status and/or address of an existing order.
// The address referent is never resolved, only its opaque-id shape is
// checked at this boundary.
type UpdateOrderRequest struct {
	CartID    string `json:"cartId" validate:"required"`
	AddressID string `json:"address_id,omitempty" validate:"omitempty,len=21"`
	Status    string `json:"status,omitempty"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Put("/orders", h.handleUpdateOrder)
	router.Get("/orders/{orderId}", h.handleGetOrderByID)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	createdOrder, err := h.service.CreateOrder(r.Context(), requestPayload.CartID, time.Now().UTC())
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, cart.ErrNotFound):
			clientMessage = "Cart not found"
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "Cart owner not found"
		default:
			log.Error().Err(err).Str("cart_id", requestPayload.CartID).Msg("Failed to create order via service")
			clientMessage = "Failed to create order"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, createdOrder)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	foundOrder, err := h.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		var clientMessage string
		if errors.Is(err, order.ErrNotFound) {
			clientMessage = "Order not found"
		} else {
			log.Error().Err(err).Str("order_id", orderID).Msg("Failed to get order via service")
			clientMessage = "Failed to get order"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, foundOrder)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := order.ListFilter{
		UserID:          query.Get("userId"),
		Status:          query.Get("status"),
		IncludeProducts: query.Get("full") == "true",
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

// handleUpdateOrder applies the address overwrite first, then the status
// change, mirroring the legacy PUT /orders contract that keyed the order by
// its originating cart id.
func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update order request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	if requestPayload.AddressID != "" {
		if err := h.service.UpdateAddress(r.Context(), requestPayload.CartID, requestPayload.AddressID); err != nil {
			var clientMessage string
			if errors.Is(err, order.ErrNotFound) {
				clientMessage = "Order not found"
			} else {
				log.Error().Err(err).Str("order_id", requestPayload.CartID).Msg("Failed to update order address via service")
				clientMessage = "Failed to update order address"
			}
			respondWithError(w, mapErrorToStatusCode(err), clientMessage)
			return
		}
	}

	if requestPayload.Status != "" {
		if err := h.service.UpdateStatus(r.Context(), requestPayload.CartID, order.Status(requestPayload.Status)); err != nil {
			var clientMessage string
			switch {
			case errors.Is(err, order.ErrInvalidStatus):
				clientMessage = "Invalid order status"
			case errors.Is(err, order.ErrNotFound):
				clientMessage = "Order not found"
			default:
				log.Error().Err(err).Str("order_id", requestPayload.CartID).Msg("Failed to update order status via service")
				clientMessage = "Failed to update order status"
			}
			respondWithError(w, mapErrorToStatusCode(err), clientMessage)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}
