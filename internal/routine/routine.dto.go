package routine

type TaskInput struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type CreateRoutineRequest struct {
	Title        string      `json:"title"`
	Description  *string     `json:"description,omitempty"`
	StartDate    string      `json:"start_date"`
	DurationDays int         `json:"duration_days"`
	Tasks        []TaskInput `json:"tasks"`
}

// UpdateRoutineRequest carries a partial routine plus the full task set.
// Nil fields are left untouched; the task list always replaces the old set.
type UpdateRoutineRequest struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	DurationDays *int        `json:"duration_days,omitempty"`
	Tasks        []TaskInput `json:"tasks"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type Counts struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

type ListResponse struct {
	Data       []*Summary `json:"data"`
	Pagination Pagination `json:"pagination"`
	Counts     Counts     `json:"counts"`
}

type TodaySummary struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
}

type OverallSummary struct {
	TotalRoutines int `json:"totalRoutines"`
	AverageRate   int `json:"averageRate"`
}

type ToggleLogRequest struct {
	Date string `json:"date"`
}

type ToggleLogResponse struct {
	IsCompleted bool   `json:"is_completed"`
	Message     string `json:"message"`
}
