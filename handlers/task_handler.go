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

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) ToggleTaskLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	taskID, err := strconv.ParseInt(mux.Vars(r)["taskId"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req routine.ToggleLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.taskService.ToggleTaskLog(ctx, userID, taskID, req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
