// Package digest renders a user's task list as deterministic plain text,
// used as grounding context for the assistant prompt.
package digest

import (
	"fmt"
	"strings"
	"time"

	"daylist/internal/model"
)

// Summary lists tasks one per line: index, title, status, then priority,
// date and description when present. Identical input yields identical text.
func Summary(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "The user has no tasks yet."
	}

	var b strings.Builder
	for i, task := range tasks {
		status := "pending"
		if task.Completed {
			status = "completed"
		}
		fmt.Fprintf(&b, "%d. %s [%s]", i+1, strings.TrimSpace(task.Title), status)
		if task.Priority != "" {
			fmt.Fprintf(&b, " (priority: %s)", task.Priority)
		}
		if !task.Date.IsZero() {
			fmt.Fprintf(&b, " (date: %s)", task.Date.Format(time.DateOnly))
		}
		if desc := strings.TrimSpace(task.Description); desc != "" {
			fmt.Fprintf(&b, ": %s", desc)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
