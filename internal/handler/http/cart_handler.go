package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
)

type CreateCartRequest struct {
	ID string `json:"id" validate:"required"`
}

// CartItemRequest carries one line-item mutation. Quantity is deliberately
// unchecked here: the legacy backend never floor-checked it and negative
// adds are how callers shrink a line.
type CartItemRequest struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type CreateCartResponse struct {
	CartID string `json:"cart_id"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/carts", h.handleGetAllCarts)
	router.Post("/carts", h.handleCreateCart)
	router.Post("/carts/add", h.handleAddItems)
	router.Post("/carts/update", h.handleUpdateItems)
	router.Post("/carts/remove", h.handleRemoveItems)
	router.Get("/carts/{cartId}", h.handleGetCartContents)
	router.Delete("/carts/{cartId}", h.handleDeleteCart)
}

func (h *CartHandler) handleGetAllCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.service.GetAllCarts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get carts via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get carts")
		return
	}

	respondWithJSON(w, http.StatusOK, carts)
}

func (h *CartHandler) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateCartRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create cart request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	cartID, err := h.service.CreateCart(r.Context(), requestPayload.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", requestPayload.ID).Msg("Failed to create cart via service")

		var clientMessage string
		if errors.Is(err, cart.ErrCartExists) {
			clientMessage = "User already has a cart"
		} else {
			clientMessage = "Failed to create cart"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, CreateCartResponse{CartID: cartID})
}

func (h *CartHandler) handleGetCartContents(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	contents, err := h.service.GetContents(r.Context(), cartID)
	if err != nil {
		var clientMessage string
		if errors.Is(err, cart.ErrNotFound) {
			clientMessage = "Cart not found"
		} else {
			log.Error().Err(err).Str("cart_id", cartID).Msg("Failed to get cart contents via service")
			clientMessage = "Failed to get cart contents"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, contents)
}

func (h *CartHandler) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	if err := h.service.DeleteCart(r.Context(), cartID); err != nil {
		var clientMessage string
		if errors.Is(err, cart.ErrNotFound) {
			clientMessage = "Cart not found"
		} else {
			log.Error().Err(err).Str("cart_id", cartID).Msg("Failed to delete cart via service")
			clientMessage = "Failed to delete cart"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAddItems accepts either a single item object or an array of them. A
// batch is processed as N sequential single calls: on the first failure the
// already-applied items stay applied and the rest are skipped.
func (h *CartHandler) handleAddItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.decodeItemBatch(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	for _, item := range items {
		if err := h.validate.Struct(item); err != nil {
			respondWithValidationError(w, err)
			return
		}
		if err := h.service.AddItem(r.Context(), item.CartID, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).Str("cart_id", item.CartID).Str("product_id", item.ProductID).Msg("Failed to add item via service")
			respondWithError(w, mapErrorToStatusCode(err), "Failed to add item to cart")
			return
		}
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *CartHandler) handleUpdateItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.decodeItemBatch(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	for _, item := range items {
		if err := h.validate.Struct(item); err != nil {
			respondWithValidationError(w, err)
			return
		}
		if err := h.service.UpdateItem(r.Context(), item.CartID, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).Str("cart_id", item.CartID).Str("product_id", item.ProductID).Msg("Failed to update item via service")
			respondWithError(w, mapErrorToStatusCode(err), "Failed to update item in cart")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *CartHandler) handleRemoveItems(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var items []RemoveItemRequest
	if isJSONArray(body) {
		if err := json.Unmarshal(body, &items); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	} else {
		var item RemoveItemRequest
		if err := json.Unmarshal(body, &item); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		items = []RemoveItemRequest{item}
	}

	for _, item := range items {
		if err := h.validate.Struct(item); err != nil {
			respondWithValidationError(w, err)
			return
		}
		if err := h.service.RemoveItem(r.Context(), item.CartID, item.ProductID, item.Quantity); err != nil {
			var clientMessage string
			if errors.Is(err, cart.ErrLineNotFound) {
				clientMessage = "Cart line not found"
			} else {
				log.Error().Err(err).Str("cart_id", item.CartID).Str("product_id", item.ProductID).Msg("Failed to remove item via service")
				clientMessage = "Failed to remove item from cart"
			}
			respondWithError(w, mapErrorToStatusCode(err), clientMessage)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) decodeItemBatch(body io.Reader) ([]CartItemRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if isJSONArray(raw) {
		var items []CartItemRequest
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var item CartItemRequest
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return []CartItemRequest{item}, nil
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
