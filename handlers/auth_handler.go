package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"routineTrackerAPI/internal/user"
	"routineTrackerAPI/middleware"
	"routineTrackerAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Signup(ctx, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]*user.User{"user": u})
}
