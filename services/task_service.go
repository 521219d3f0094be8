package services

import (
	"context"
	"fmt"
	"time"

	"routineTrackerAPI/internal/apperr"
	"routineTrackerAPI/internal/routine"
)

type TaskService struct {
	db DB
}

func NewTaskService(db DB) *TaskService {
	return &TaskService{db: db}
}

// ToggleTaskLog flips whether the task is marked complete on the given day.
//
// The flip is written as two single-row statements keyed by the unique
// (task_id, completed_date) pair, never by a previously fetched row id, so
// interleaved toggles cannot double-insert or delete someone else's row:
// a delete that removes nothing falls through to a conditional insert, and
// an insert that hits the uniqueness constraint means another request just
// completed the same slot, which is reported as the current state instead
// of an error.
func (s *TaskService) ToggleTaskLog(ctx context.Context, userID, taskID int64, date string) (*routine.ToggleLogResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperr.ErrBadRequest)
	}

	// Ownership gate. Absent and not-owned are deliberately the same
	// answer so the endpoint leaks nothing about other users' tasks.
	var owned bool
	err = s.db.QueryRow(ctx, `
	SELECT EXISTS (
		SELECT 1
		FROM tasks t
		JOIN routines r ON r.id = t.routine_id
		WHERE t.id = $1 AND r.user_id = $2
	)
	`, taskID, userID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check task ownership: %w", err)
	}
	if !owned {
		return nil, apperr.ErrTaskNotFound
	}

	tag, err := s.db.Exec(ctx, `
	DELETE FROM task_logs
	WHERE task_id = $1 AND completed_date = $2
	`, taskID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to delete task log: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return &routine.ToggleLogResponse{
			IsCompleted: false,
			Message:     "Task unchecked for the day.",
		}, nil
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO task_logs (task_id, completed_date)
	VALUES ($1, $2)
	ON CONFLICT (task_id, completed_date) DO NOTHING
	`, taskID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task log: %w", err)
	}

	return &routine.ToggleLogResponse{
		IsCompleted: true,
		Message:     "Task checked for the day.",
	}, nil
}
