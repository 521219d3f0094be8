package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routineTrackerAPI/internal/apperr"
	"routineTrackerAPI/internal/routine"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateAndGetRoutine(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	svc := NewRoutineService(pool)
	ctx := context.Background()

	created, err := svc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
		Title:        "Morning routine",
		Description:  strPtr("wake up early"),
		StartDate:    "2024-01-01",
		DurationDays: 10,
		Tasks: []routine.TaskInput{
			{Name: "Stretch", SortOrder: 0},
			{Name: "Meditate", SortOrder: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Morning routine", created.Title)
	assert.Equal(t, "2024-01-01", created.StartDate)
	assert.Equal(t, "2024-01-11", created.EndDate)
	require.Len(t, created.Tasks, 2)
	assert.Equal(t, "Stretch", created.Tasks[0].Name)
	assert.Len(t, created.DailyStatus, 10)

	fetched, err := svc.GetRoutine(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, 0, fetched.CompletionRate)
}

func TestCreateRoutineValidation(t *testing.T) {
	svc := NewRoutineService(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  routine.CreateRoutineRequest
	}{
		{"missing title", routine.CreateRoutineRequest{StartDate: "2024-01-01", DurationDays: 5, Tasks: []routine.TaskInput{}}},
		{"zero duration", routine.CreateRoutineRequest{Title: "t", StartDate: "2024-01-01", DurationDays: 0, Tasks: []routine.TaskInput{}}},
		{"missing task list", routine.CreateRoutineRequest{Title: "t", StartDate: "2024-01-01", DurationDays: 5}},
		{"bad start date", routine.CreateRoutineRequest{Title: "t", StartDate: "01/01/2024", DurationDays: 5, Tasks: []routine.TaskInput{}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRoutine(ctx, 1, &tc.req)
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
		})
	}
}

func TestGetRoutineNotFoundForStranger(t *testing.T) {
	pool := setupTestDB(t)
	ownerID := createTestUser(t, pool)
	strangerID := createTestUser(t, pool)

	svc := NewRoutineService(pool)
	ctx := context.Background()

	created, err := svc.CreateRoutine(ctx, ownerID, &routine.CreateRoutineRequest{
		Title: "Private", StartDate: "2024-01-01", DurationDays: 5,
		Tasks: []routine.TaskInput{{Name: "secret"}},
	})
	require.NoError(t, err)

	_, err = svc.GetRoutine(ctx, strangerID, created.ID)
	assert.ErrorIs(t, err, apperr.ErrRoutineNotFound)
}

func TestUpdateRoutineReconcilesTaskSet(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	svc := NewRoutineService(pool)
	ctx := context.Background()

	created, err := svc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
		Title: "Evening routine", StartDate: "2024-01-01", DurationDays: 7,
		Tasks: []routine.TaskInput{
			{Name: "Read", SortOrder: 0},
			{Name: "Journal", SortOrder: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Tasks, 2)

	keep := created.Tasks[0]
	updated, err := svc.UpdateRoutine(ctx, userID, created.ID, &routine.UpdateRoutineRequest{
		Title:        strPtr("Night routine"),
		DurationDays: intPtr(14),
		Tasks: []routine.TaskInput{
			{ID: keep.ID, Name: "Read a chapter", SortOrder: 1},
			{Name: "Plan tomorrow", SortOrder: 0},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Night routine", updated.Title)
	assert.Equal(t, 14, updated.DurationDays)
	assert.Len(t, updated.DailyStatus, 14)
	require.Len(t, updated.Tasks, 2)

	// sort_order drives display order; the dropped task is gone.
	assert.Equal(t, "Plan tomorrow", updated.Tasks[0].Name)
	assert.Equal(t, keep.ID, updated.Tasks[1].ID)
	assert.Equal(t, "Read a chapter", updated.Tasks[1].Name)
}

func TestUpdateRoutineNotFound(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	svc := NewRoutineService(pool)
	_, err := svc.UpdateRoutine(context.Background(), userID, 999999999, &routine.UpdateRoutineRequest{
		Tasks: []routine.TaskInput{},
	})
	assert.ErrorIs(t, err, apperr.ErrRoutineNotFound)
}

func TestDeleteRoutineCascades(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	routineSvc := NewRoutineService(pool)
	taskSvc := NewTaskService(pool)
	ctx := context.Background()

	created, err := routineSvc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
		Title: "Short lived", StartDate: "2024-01-01", DurationDays: 3,
		Tasks: []routine.TaskInput{{Name: "only task"}},
	})
	require.NoError(t, err)

	_, err = taskSvc.ToggleTaskLog(ctx, userID, created.Tasks[0].ID, "2024-01-02")
	require.NoError(t, err)

	require.NoError(t, routineSvc.DeleteRoutine(ctx, userID, created.ID))

	var logs int
	err = pool.QueryRow(ctx, `
	SELECT COUNT(*) FROM task_logs WHERE task_id = $1
	`, created.Tasks[0].ID).Scan(&logs)
	require.NoError(t, err)
	assert.Equal(t, 0, logs)

	assert.ErrorIs(t, routineSvc.DeleteRoutine(ctx, userID, created.ID), apperr.ErrRoutineNotFound)
}

func TestListRoutinesPaginationAndCounts(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	svc := NewRoutineService(pool)
	ctx := context.Background()

	// Ten active routines (future windows) and one long-expired.
	for i := 0; i < 10; i++ {
		_, err := svc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
			Title:     string(rune('a'+i)) + "-routine",
			StartDate: "2030-01-01", DurationDays: 10,
			Tasks: []routine.TaskInput{{Name: "task"}},
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
		Title: "expired", StartDate: "2020-01-01", DurationDays: 10,
		Tasks: []routine.TaskInput{{Name: "task"}},
	})
	require.NoError(t, err)

	result, err := svc.ListRoutines(ctx, userID, 2, 6, "active", "name")
	require.NoError(t, err)

	assert.Len(t, result.Data, 4)
	assert.Equal(t, routine.Pagination{Total: 10, Page: 2, Limit: 6, TotalPages: 2}, result.Pagination)
	assert.Equal(t, routine.Counts{Active: 10, Completed: 1}, result.Counts)

	// The expired routine shows up under the completed filter even though
	// its rate never reached 100.
	completed, err := svc.ListRoutines(ctx, userID, 1, 6, "completed", "newest")
	require.NoError(t, err)
	require.Len(t, completed.Data, 1)
	assert.Equal(t, "expired", completed.Data[0].Title)
	assert.True(t, completed.Data[0].IsCompleted)
}

func TestOverallAndTodaySummaries(t *testing.T) {
	pool := setupTestDB(t)
	userID := createTestUser(t, pool)

	routineSvc := NewRoutineService(pool)
	ctx := context.Background()

	// No routines yet: both summaries are all zeros.
	overall, err := routineSvc.GetOverallSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, routine.OverallSummary{}, overall)

	today, err := routineSvc.GetTodaySummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, routine.TodaySummary{}, today)

	_, err = routineSvc.CreateRoutine(ctx, userID, &routine.CreateRoutineRequest{
		Title: "Active", StartDate: "2030-01-01", DurationDays: 10,
		Tasks: []routine.TaskInput{{Name: "a"}, {Name: "b"}},
	})
	require.NoError(t, err)

	overall, err = routineSvc.GetOverallSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, overall.TotalRoutines)
	assert.Equal(t, 0, overall.AverageRate)

	today, err = routineSvc.GetTodaySummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, today.TotalTasks)
	assert.Equal(t, 0, today.CompletedTasks)
}
