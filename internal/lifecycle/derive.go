package lifecycle

import (
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// Day truncates t to midnight UTC of its own calendar date. All date
// comparisons in this package happen on values normalized by Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayPtr normalizes an optional date.
func DayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Day(*t)
	return &d
}

// DeriveTaskStatus computes the status a task should have under the given
// project status and schedule. It is pure; today must be supplied by the caller.
func DeriveTaskStatus(current models.TaskStatus, projectStatus models.ProjectStatus, start, due *time.Time, today time.Time) models.TaskStatus {
	if current.IsTerminal() {
		return current
	}

	switch projectStatus {
	case models.ProjectPlanning:
		return models.TaskTodo
	case models.ProjectOnHold:
		return models.TaskOnHold
	case models.ProjectCancelled:
		return models.TaskBlocked
	case models.ProjectActive:
		return deriveFromDates(start, due, Day(today))
	default:
		// COMPLETED, or a status this package does not know about
		return current
	}
}

func deriveFromDates(start, due *time.Time, today time.Time) models.TaskStatus {
	if start != nil {
		if today.Before(Day(*start)) {
			return models.TaskTodo
		}
		return models.TaskInProgress
	}
	if due != nil && today.After(Day(*due)) {
		return models.TaskInProgress
	}
	return models.TaskTodo
}

// InitialTaskStatus is the status a newly created task gets. An empty project
// status means the project could not be looked up.
func InitialTaskStatus(projectStatus models.ProjectStatus, start, due *time.Time, today time.Time) models.TaskStatus {
	if projectStatus == "" {
		return models.TaskTodo
	}
	return DeriveTaskStatus(models.TaskTodo, projectStatus, start, due, today)
}
