package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"routineTrackerAPI/internal/routine"
	"routineTrackerAPI/middleware"
	"routineTrackerAPI/services"
)

type RoutineHandler struct {
	routineService *services.RoutineService
}

func NewRoutineHandler(routineService *services.RoutineService) *RoutineHandler {
	return &RoutineHandler{
		routineService: routineService,
	}
}

type listQuery struct {
	page   int
	limit  int
	filter string
	sort   string
}

// parseListQuery normalizes the listing params: page >= 1, limit clamped
// to [1, 20] with default 6, filter and sort fall back to their defaults
// on unknown values.
func parseListQuery(r *http.Request) listQuery {
	q := listQuery{page: 1, limit: 6, filter: "active", sort: "newest"}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 1 {
		q.page = page
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		if limit < 1 {
			limit = 1
		}
		if limit > 20 {
			limit = 20
		}
		q.limit = limit
	}

	if r.URL.Query().Get("filter") == "completed" {
		q.filter = "completed"
	}

	switch sort := r.URL.Query().Get("sort"); sort {
	case "oldest", "name":
		q.sort = sort
	}

	return q
}

func (h *RoutineHandler) GetAllRoutines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q := parseListQuery(r)

	result, err := h.routineService.ListRoutines(ctx, userID, q.page, q.limit, q.filter, q.sort)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *RoutineHandler) GetTodaySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	summary, err := h.routineService.GetTodaySummary(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *RoutineHandler) GetOverallSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	summary, err := h.routineService.GetOverallSummary(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *RoutineHandler) GetRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	routineID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid routine id")
		return
	}

	detail, err := h.routineService.GetRoutine(ctx, userID, routineID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *RoutineHandler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req routine.CreateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.routineService.CreateRoutine(ctx, userID, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *RoutineHandler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	routineID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid routine id")
		return
	}

	var req routine.UpdateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.routineService.UpdateRoutine(ctx, userID, routineID, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *RoutineHandler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	routineID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid routine id")
		return
	}

	if err := h.routineService.DeleteRoutine(ctx, userID, routineID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
