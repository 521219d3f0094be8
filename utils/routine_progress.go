package utils

import (
	"math"
	"time"

	"routineTrackerAPI/internal/routine"
)

const dayFormat = "2006-01-02"

// StripTime truncates a timestamp to UTC midnight so all comparisons work
// on calendar days.
func StripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalcEndDate returns the exclusive upper bound of the active window:
// start_date + duration_days.
func CalcEndDate(startDate time.Time, durationDays int) time.Time {
	return StripTime(startDate).AddDate(0, 0, durationDays)
}

// CalcCompletionRate computes the percentage of completed slots inside the
// active window [start, end). Logs outside the window do not count, so a
// shortened duration never yields a rate above 100. Ties round half away
// from zero via math.Round. Zero tasks or zero duration give 0.
func CalcCompletionRate(tasks []*routine.Task, startDate time.Time, durationDays int) int {
	totalSlots := durationDays * len(tasks)
	if totalSlots == 0 {
		return 0
	}

	startDay := StripTime(startDate)
	endDay := CalcEndDate(startDate, durationDays)

	completedSlots := 0
	for _, t := range tasks {
		for _, l := range t.Logs {
			d := StripTime(l.CompletedDate)
			if !d.Before(startDay) && d.Before(endDay) {
				completedSlots++
			}
		}
	}

	return int(math.Round(float64(completedSlots) / float64(totalSlots) * 100))
}

// CheckIsCompleted reports whether a routine is no longer active: fully
// completed, or its window has elapsed regardless of rate.
func CheckIsCompleted(completionRate int, endDate time.Time, now time.Time) bool {
	return completionRate == 100 || now.After(endDate)
}

// BuildDailyStatus produces one row per day of the active window with a
// completion flag per task. Logs are collapsed into per-task day sets first
// so the day loop is a set probe, not a log scan.
func BuildDailyStatus(tasks []*routine.Task, startDate time.Time, durationDays int) []routine.DailyStatus {
	type taskDays struct {
		taskID    int64
		completed map[string]bool
	}

	taskLogMaps := make([]taskDays, 0, len(tasks))
	for _, t := range tasks {
		completed := make(map[string]bool, len(t.Logs))
		for _, l := range t.Logs {
			completed[StripTime(l.CompletedDate).Format(dayFormat)] = true
		}
		taskLogMaps = append(taskLogMaps, taskDays{taskID: t.ID, completed: completed})
	}

	startDay := StripTime(startDate)
	grid := make([]routine.DailyStatus, 0, durationDays)
	for i := 0; i < durationDays; i++ {
		dateStr := startDay.AddDate(0, 0, i).Format(dayFormat)

		status := make([]routine.TaskStatus, 0, len(taskLogMaps))
		for _, t := range taskLogMaps {
			status = append(status, routine.TaskStatus{
				TaskID:      t.taskID,
				IsCompleted: t.completed[dateStr],
			})
		}

		grid = append(grid, routine.DailyStatus{Day: i + 1, Date: dateStr, Status: status})
	}

	return grid
}

// CalcTodayProgress counts how many of the routine's tasks have a log dated
// today. A task counts once no matter how many logs it has that day.
func CalcTodayProgress(tasks []*routine.Task, now time.Time) (todayTotal, todayCompleted int) {
	todayStr := StripTime(now).Format(dayFormat)

	todayTotal = len(tasks)
	for _, t := range tasks {
		for _, l := range t.Logs {
			if StripTime(l.CompletedDate).Format(dayFormat) == todayStr {
				todayCompleted++
				break
			}
		}
	}

	return todayTotal, todayCompleted
}

// EnrichRoutineSummary derives the list-view fields for one routine.
func EnrichRoutineSummary(r *routine.Routine, now time.Time) *routine.Summary {
	endDate := CalcEndDate(r.StartDate, r.DurationDays)
	rate := CalcCompletionRate(r.Tasks, r.StartDate, r.DurationDays)
	todayTotal, todayCompleted := CalcTodayProgress(r.Tasks, now)

	return &routine.Summary{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		StartDate:      StripTime(r.StartDate).Format(dayFormat),
		DurationDays:   r.DurationDays,
		EndDate:        endDate.Format(dayFormat),
		CompletionRate: rate,
		IsCompleted:    CheckIsCompleted(rate, endDate, now),
		TodayTotal:     todayTotal,
		TodayCompleted: todayCompleted,
	}
}

// EnrichRoutineDetail derives the detail-view fields including the full
// daily grid, regenerated on every read.
func EnrichRoutineDetail(r *routine.Routine, now time.Time) *routine.Detail {
	endDate := CalcEndDate(r.StartDate, r.DurationDays)
	rate := CalcCompletionRate(r.Tasks, r.StartDate, r.DurationDays)

	return &routine.Detail{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		StartDate:      StripTime(r.StartDate).Format(dayFormat),
		DurationDays:   r.DurationDays,
		EndDate:        endDate.Format(dayFormat),
		CompletionRate: rate,
		IsCompleted:    CheckIsCompleted(rate, endDate, now),
		Tasks:          r.Tasks,
		DailyStatus:    BuildDailyStatus(r.Tasks, r.StartDate, r.DurationDays),
	}
}

// CalcOverallSummary averages the completion rate of still-active routines.
// No active routines means both fields are 0.
func CalcOverallSummary(routines []*routine.Routine, now time.Time) routine.OverallSummary {
	total := 0
	rateSum := 0
	for _, r := range routines {
		endDate := CalcEndDate(r.StartDate, r.DurationDays)
		rate := CalcCompletionRate(r.Tasks, r.StartDate, r.DurationDays)
		if CheckIsCompleted(rate, endDate, now) {
			continue
		}
		total++
		rateSum += rate
	}

	if total == 0 {
		return routine.OverallSummary{}
	}

	return routine.OverallSummary{
		TotalRoutines: total,
		AverageRate:   int(math.Round(float64(rateSum) / float64(total))),
	}
}

// CalcTodaySummary sums today's task counts across routines whose window
// has not elapsed yet, independent of their completion rate.
func CalcTodaySummary(routines []*routine.Routine, now time.Time) routine.TodaySummary {
	var summary routine.TodaySummary
	for _, r := range routines {
		if now.After(CalcEndDate(r.StartDate, r.DurationDays)) {
			continue
		}
		todayTotal, todayCompleted := CalcTodayProgress(r.Tasks, now)
		summary.TotalTasks += todayTotal
		summary.CompletedTasks += todayCompleted
	}
	return summary
}

// Paginate slices an already-filtered, already-sorted summary list.
func Paginate(items []*routine.Summary, page, limit int) ([]*routine.Summary, routine.Pagination) {
	total := len(items)
	skip := (page - 1) * limit

	var paginated []*routine.Summary
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		paginated = items[skip:end]
	} else {
		paginated = []*routine.Summary{}
	}

	return paginated, routine.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}
