package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"routineTrackerAPI/internal/apperr"
	"routineTrackerAPI/internal/routine"
	"routineTrackerAPI/utils"
)

type RoutineService struct {
	db DB
}

func NewRoutineService(db DB) *RoutineService {
	return &RoutineService{db: db}
}

// orderClauses whitelists the sort keys the listing accepts. Ordering is
// done by the store so it follows the store's collation.
var orderClauses = map[string]string{
	"newest": "start_date DESC, id DESC",
	"oldest": "start_date ASC, id ASC",
	"name":   "title ASC, id ASC",
}

// ListRoutines returns one page of the user's routines for the requested
// filter, plus active/completed counts over the full classification.
func (s *RoutineService) ListRoutines(ctx context.Context, userID int64, page, limit int, filter, sort string) (*routine.ListResponse, error) {
	orderBy, ok := orderClauses[sort]
	if !ok {
		orderBy = orderClauses["newest"]
	}

	routines, err := s.loadUserRoutines(ctx, userID, orderBy)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var active, completed []*routine.Summary
	for _, r := range routines {
		summary := utils.EnrichRoutineSummary(r, now)
		if summary.IsCompleted {
			completed = append(completed, summary)
		} else {
			active = append(active, summary)
		}
	}

	selected := active
	if filter == "completed" {
		selected = completed
	}

	data, pagination := utils.Paginate(selected, page, limit)

	return &routine.ListResponse{
		Data:       data,
		Pagination: pagination,
		Counts:     routine.Counts{Active: len(active), Completed: len(completed)},
	}, nil
}

// GetRoutine returns one routine with its tasks, logs and daily grid.
func (s *RoutineService) GetRoutine(ctx context.Context, userID, routineID int64) (*routine.Detail, error) {
	r := &routine.Routine{}
	err := s.db.QueryRow(ctx, `
	SELECT id, user_id, title, description, start_date, duration_days
	FROM routines
	WHERE id = $1 AND user_id = $2
	`, routineID, userID).Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &r.StartDate, &r.DurationDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrRoutineNotFound
		}
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}

	if err := s.attachTasks(ctx, []*routine.Routine{r}); err != nil {
		return nil, err
	}

	return utils.EnrichRoutineDetail(r, time.Now().UTC()), nil
}

// CreateRoutine inserts the routine and its task list in one transaction.
func (s *RoutineService) CreateRoutine(ctx context.Context, userID int64, req *routine.CreateRoutineRequest) (*routine.Detail, error) {
	startDate, err := validateRoutineInput(req.Title, req.StartDate, req.DurationDays, req.Tasks)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var routineID int64
	err = tx.QueryRow(ctx, `
	INSERT INTO routines (user_id, title, description, start_date, duration_days)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`, userID, req.Title, req.Description, startDate, req.DurationDays).Scan(&routineID)
	if err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}

	for _, t := range req.Tasks {
		_, err = tx.Exec(ctx, `
		INSERT INTO tasks (routine_id, name, sort_order)
		VALUES ($1, $2, $3)
		`, routineID, t.Name, t.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit routine: %w", err)
	}

	return s.GetRoutine(ctx, userID, routineID)
}

// UpdateRoutine applies a partial routine update and reconciles the task
// set (delete missing, update existing, insert new) as one transaction so
// a partial task set is never observable.
func (s *RoutineService) UpdateRoutine(ctx context.Context, userID, routineID int64, req *routine.UpdateRoutineRequest) (*routine.Detail, error) {
	if req.DurationDays != nil && *req.DurationDays < 1 {
		return nil, fmt.Errorf("%w: duration_days must be positive", apperr.ErrBadRequest)
	}
	if req.Tasks == nil {
		return nil, fmt.Errorf("%w: task list is required", apperr.ErrBadRequest)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE routines
	SET
		title = COALESCE($3, title),
		description = COALESCE($4, description),
		duration_days = COALESCE($5, duration_days)
	WHERE id = $1 AND user_id = $2
	`, routineID, userID, req.Title, req.Description, req.DurationDays)
	if err != nil {
		return nil, fmt.Errorf("failed to update routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.ErrRoutineNotFound
	}

	keptIDs := make([]int64, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		if t.ID != 0 {
			keptIDs = append(keptIDs, t.ID)
		}
	}

	_, err = tx.Exec(ctx, `
	DELETE FROM tasks
	WHERE routine_id = $1 AND NOT (id = ANY($2))
	`, routineID, keptIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to delete removed tasks: %w", err)
	}

	for _, t := range req.Tasks {
		if t.ID != 0 {
			_, err = tx.Exec(ctx, `
			UPDATE tasks
			SET name = $3, sort_order = $4
			WHERE id = $1 AND routine_id = $2
			`, t.ID, routineID, t.Name, t.SortOrder)
		} else {
			_, err = tx.Exec(ctx, `
			INSERT INTO tasks (routine_id, name, sort_order)
			VALUES ($1, $2, $3)
			`, routineID, t.Name, t.SortOrder)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile tasks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit routine update: %w", err)
	}

	return s.GetRoutine(ctx, userID, routineID)
}

// DeleteRoutine removes the routine; tasks and logs go with it via the
// schema's ON DELETE CASCADE.
func (s *RoutineService) DeleteRoutine(ctx context.Context, userID, routineID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routines WHERE id = $1 AND user_id = $2`, routineID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrRoutineNotFound
	}
	return nil
}

// GetTodaySummary sums today's task counts across the user's routines that
// are still inside their active window.
func (s *RoutineService) GetTodaySummary(ctx context.Context, userID int64) (routine.TodaySummary, error) {
	routines, err := s.loadUserRoutines(ctx, userID, orderClauses["newest"])
	if err != nil {
		return routine.TodaySummary{}, err
	}
	return utils.CalcTodaySummary(routines, time.Now().UTC()), nil
}

// GetOverallSummary averages completion across the user's active routines.
func (s *RoutineService) GetOverallSummary(ctx context.Context, userID int64) (routine.OverallSummary, error) {
	routines, err := s.loadUserRoutines(ctx, userID, orderClauses["newest"])
	if err != nil {
		return routine.OverallSummary{}, err
	}
	return utils.CalcOverallSummary(routines, time.Now().UTC()), nil
}

// loadUserRoutines fetches the user's routines with their tasks and logs
// in three queries, assembled in memory.
func (s *RoutineService) loadUserRoutines(ctx context.Context, userID int64, orderBy string) ([]*routine.Routine, error) {
	query := fmt.Sprintf(`
	SELECT id, user_id, title, description, start_date, duration_days
	FROM routines
	WHERE user_id = $1
	ORDER BY %s
	`, orderBy)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routines: %w", err)
	}
	defer rows.Close()

	var routines []*routine.Routine
	for rows.Next() {
		r := &routine.Routine{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.StartDate, &r.DurationDays); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read routines: %w", err)
	}

	if err := s.attachTasks(ctx, routines); err != nil {
		return nil, err
	}

	return routines, nil
}

// attachTasks loads tasks and logs for the given routines and wires them
// onto their owners. Task order is sort_order with creation-order ties.
func (s *RoutineService) attachTasks(ctx context.Context, routines []*routine.Routine) error {
	if len(routines) == 0 {
		return nil
	}

	routineIDs := make([]int64, 0, len(routines))
	byRoutineID := make(map[int64]*routine.Routine, len(routines))
	for _, r := range routines {
		r.Tasks = []*routine.Task{}
		routineIDs = append(routineIDs, r.ID)
		byRoutineID[r.ID] = r
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, routine_id, name, sort_order
	FROM tasks
	WHERE routine_id = ANY($1)
	ORDER BY sort_order ASC, id ASC
	`, routineIDs)
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	taskIDs := []int64{}
	byTaskID := map[int64]*routine.Task{}
	for rows.Next() {
		t := &routine.Task{Logs: []*routine.TaskLog{}}
		if err := rows.Scan(&t.ID, &t.RoutineID, &t.Name, &t.SortOrder); err != nil {
			return fmt.Errorf("failed to scan task: %w", err)
		}
		byRoutineID[t.RoutineID].Tasks = append(byRoutineID[t.RoutineID].Tasks, t)
		taskIDs = append(taskIDs, t.ID)
		byTaskID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}

	if len(taskIDs) == 0 {
		return nil
	}

	logRows, err := s.db.Query(ctx, `
	SELECT id, task_id, completed_date
	FROM task_logs
	WHERE task_id = ANY($1)
	ORDER BY completed_date DESC
	`, taskIDs)
	if err != nil {
		return fmt.Errorf("failed to query task logs: %w", err)
	}
	defer logRows.Close()

	for logRows.Next() {
		l := &routine.TaskLog{}
		if err := logRows.Scan(&l.ID, &l.TaskID, &l.CompletedDate); err != nil {
			return fmt.Errorf("failed to scan task log: %w", err)
		}
		byTaskID[l.TaskID].Logs = append(byTaskID[l.TaskID].Logs, l)
	}
	if err := logRows.Err(); err != nil {
		return fmt.Errorf("failed to read task logs: %w", err)
	}

	return nil
}

func validateRoutineInput(title, startDate string, durationDays int, tasks []routine.TaskInput) (time.Time, error) {
	if title == "" {
		return time.Time{}, fmt.Errorf("%w: title is required", apperr.ErrBadRequest)
	}
	if durationDays < 1 {
		return time.Time{}, fmt.Errorf("%w: duration_days must be positive", apperr.ErrBadRequest)
	}
	if tasks == nil {
		return time.Time{}, fmt.Errorf("%w: task list is required", apperr.ErrBadRequest)
	}
	parsed, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", apperr.ErrBadRequest)
	}
	return parsed, nil
}
