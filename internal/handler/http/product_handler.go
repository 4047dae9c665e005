package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
)

type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Category    int    `json:"category"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleGetAllProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products/{id}", h.handleGetProductByID)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleGetAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAllProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get products via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	domainProduct := product.Product{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Category:    requestPayload.Category,
	}

	createdProduct, err := h.service.CreateProduct(r.Context(), &domainProduct)
	if err != nil {
		var clientMessage string
		if errors.Is(err, product.ErrInvalidPrice) {
			clientMessage = "Invalid product price"
		} else {
			log.Error().Err(err).Msg("Failed to create product via service")
			clientMessage = "Failed to create product"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, createdProduct)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	foundProduct, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		var clientMessage string
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Str("product_id", id).Msg("Failed to get product via service")
			clientMessage = "Failed to get product"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, foundProduct)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	domainProduct := product.Product{
		ID:          id,
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Category:    requestPayload.Category,
	}

	if err := h.service.UpdateProduct(r.Context(), &domainProduct); err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, product.ErrNotFound):
			clientMessage = "Product not found"
		case errors.Is(err, product.ErrInvalidPrice):
			clientMessage = "Invalid product price"
		default:
			log.Error().Err(err).Str("product_id", id).Msg("Failed to update product via service")
			clientMessage = "Failed to update product"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		var clientMessage string
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Str("product_id", id).Msg("Failed to delete product via service")
			clientMessage = "Failed to delete product"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
