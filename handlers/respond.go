package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"routineTrackerAPI/internal/apperr"
	"routineTrackerAPI/middleware"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// handleServiceError maps classified service errors to status codes with
// fixed user-safe messages. Unclassified errors never reach the caller as
// text; they get logged with the request id and answered generically.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		respondWithError(w, http.StatusBadRequest, "Required fields are missing or malformed.")
	case errors.Is(err, apperr.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Email or password is incorrect.")
	case errors.Is(err, apperr.ErrUserNotFound):
		respondWithError(w, http.StatusUnauthorized, "Authentication required. Please log in again.")
	case errors.Is(err, apperr.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "This email is already in use.")
	case errors.Is(err, apperr.ErrRoutineNotFound):
		respondWithError(w, http.StatusNotFound, "Routine not found or you do not have access to it.")
	case errors.Is(err, apperr.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, "Task not found or you do not have access to it.")
	default:
		requestID, _ := middleware.GetRequestID(r.Context())
		log.Printf("[Error] request_id=%s %s %s: %v", requestID, r.Method, r.URL.Path, err)
		respondWithError(w, http.StatusInternalServerError, "The service is temporarily unavailable. Please try again later.")
	}
}
