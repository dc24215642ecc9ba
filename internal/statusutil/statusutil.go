package statusutil

import (
	"fmt"
	"strings"

	"tugestor-cli/internal/model"
)

func canonical(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// NormalizePriority maps user input (any case, english aliases) to a priority.
func NormalizePriority(s string) (model.Priority, error) {
	switch canonical(s) {
	case "BAJA", "LOW":
		return model.PriorityLow, nil
	case "MEDIA", "MEDIUM":
		return model.PriorityMedium, nil
	case "ALTA", "HIGH":
		return model.PriorityHigh, nil
	case "IMPRESCINDIBLE", "ESSENTIAL", "CRITICAL":
		return model.PriorityEssential, nil
	case "":
		return "", fmt.Errorf("invalid priority: empty")
	default:
		return "", fmt.Errorf("invalid priority: %s", strings.TrimSpace(s))
	}
}

// NormalizeState maps user input to a task state.
func NormalizeState(s string) (model.State, error) {
	switch c := canonical(s); c {
	case "EN_CURSO", "IN_PROGRESS":
		return model.StateInProgress, nil
	case "COMPLETADA", "COMPLETED", "DONE":
		return model.StateCompleted, nil
	case "COMPLETADA_CON_RETRASO", "COMPLETED_LATE", "LATE":
		return model.StateCompletedLate, nil
	case "VENCIDA", "OVERDUE":
		return model.StateOverdue, nil
	case "SIN_FECHA", "NO_DATE":
		return model.StateNoDate, nil
	case "":
		return "", fmt.Errorf("invalid state: empty")
	default:
		return "", fmt.Errorf("invalid state: %s", strings.TrimSpace(s))
	}
}

// IsEndState reports whether the task no longer needs work.
func IsEndState(t model.Task) bool {
	if t.State != "" {
		return t.State.IsDone()
	}
	return t.Completed
}
