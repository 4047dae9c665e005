package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=2"`
	Password  string `json:"password" validate:"required,min=8"`
	AddressID string `json:"address_id" validate:"required,len=21"`
	Fullname  string `json:"fullname" validate:"required"`
}

type UpdateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=2"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	AddressID string  `json:"address_id" validate:"required,len=21"`
	Fullname  string  `json:"fullname" validate:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AddressID string `json:"address_id"`
	Fullname  string `json:"fullname"`
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleGetAllUsers)
	router.Post("/users", h.handleCreateUser)
	router.Get("/users/{id}", h.handleGetUserByID)
	router.Put("/users/{id}", h.handleUpdateUser)
	router.Delete("/users/{id}", h.handleDeleteUser)
}

func (h *UserHandler) handleGetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get users")
		return
	}

	responsePayload := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responsePayload = append(responsePayload, toUserResponse(&u))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create user request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	domainUser := user.User{
		Username:  requestPayload.Username,
		Password:  requestPayload.Password,
		AddressID: requestPayload.AddressID,
		Fullname:  requestPayload.Fullname,
	}

	createdUser, err := h.service.CreateUser(r.Context(), &domainUser)
	if err != nil {
		var clientMessage string
		if errors.Is(err, user.ErrUsernameTaken) {
			clientMessage = "Username already taken"
		} else {
			log.Error().Err(err).Msg("Failed to create user via service")
			clientMessage = "Failed to create user"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(createdUser))
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	foundUser, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		var clientMessage string
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "User not found"
		} else {
			log.Error().Err(err).Str("user_id", id).Msg("Failed to get user via service")
			clientMessage = "Failed to get user"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(foundUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var requestPayload UpdateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update user request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	domainUser := user.User{
		ID:        id,
		Username:  requestPayload.Username,
		AddressID: requestPayload.AddressID,
		Fullname:  requestPayload.Fullname,
	}
	if requestPayload.Password != nil {
		domainUser.Password = *requestPayload.Password
	}

	if err := h.service.UpdateUser(r.Context(), &domainUser); err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "User not found"
		case errors.Is(err, user.ErrUsernameTaken):
			clientMessage = "Username already taken"
		default:
			log.Error().Err(err).Str("user_id", id).Msg("Failed to update user via service")
			clientMessage = "Failed to update user"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		var clientMessage string
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "User not found"
		} else {
			log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user via service")
			clientMessage = "Failed to delete user"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		AddressID: u.AddressID,
		Fullname:  u.Fullname,
	}
}
