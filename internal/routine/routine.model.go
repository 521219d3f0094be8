package routine

import "time"

type Routine struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	DurationDays int       `json:"duration_days"`
	Tasks        []*Task   `json:"tasks,omitempty"`
}

type Task struct {
	ID        int64      `json:"id"`
	RoutineID int64      `json:"routine_id"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sort_order"`
	Logs      []*TaskLog `json:"logs,omitempty"`
}

type TaskLog struct {
	ID            int64     `json:"id"`
	TaskID        int64     `json:"task_id"`
	CompletedDate time.Time `json:"completed_date"`
}

// Summary is a routine enriched with the derived progress fields used by
// list views. End date is the exclusive upper bound of the active window.
type Summary struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	StartDate      string    `json:"start_date"`
	DurationDays   int       `json:"duration_days"`
	EndDate        string    `json:"end_date"`
	CompletionRate int       `json:"completion_rate"`
	IsCompleted    bool      `json:"isCompleted"`
	TodayTotal     int       `json:"todayTotal"`
	TodayCompleted int       `json:"todayCompleted"`
}

// Detail is a routine enriched with the full per-day per-task grid.
type Detail struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    *string       `json:"description,omitempty"`
	StartDate      string        `json:"start_date"`
	DurationDays   int           `json:"duration_days"`
	EndDate        string        `json:"end_date"`
	CompletionRate int           `json:"completion_rate"`
	IsCompleted    bool          `json:"isCompleted"`
	Tasks          []*Task       `json:"tasks"`
	DailyStatus    []DailyStatus `json:"daily_status"`
}

// DailyStatus is one row of the daily grid: day is 1-based, date is the
// calendar day as YYYY-MM-DD, status holds one flag per task.
type DailyStatus struct {
	Day    int          `json:"day"`
	Date   string       `json:"date"`
	Status []TaskStatus `json:"status"`
}

type TaskStatus struct {
	TaskID      int64 `json:"task_id"`
	IsCompleted bool  `json:"isCompleted"`
}
