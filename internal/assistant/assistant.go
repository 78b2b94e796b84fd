// Package assistant answers user messages with the task list as context.
package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"

	"daylist/internal/apperr"
	"daylist/internal/digest"
	"daylist/internal/model"
)

// contextTaskLimit caps how many recent tasks are rendered into the prompt.
const contextTaskLimit = 50

const systemPreamble = "You are a friendly assistant inside a personal task planner. " +
	"You can see the user's current tasks below. Help them plan, prioritize " +
	"and reflect on their work. Keep answers short and practical. " +
	"You cannot modify tasks; suggest changes for the user to make themselves."

// TaskLoader supplies recent tasks for prompt context.
type TaskLoader interface {
	Recent(ctx context.Context, userID string, limit int) ([]model.Task, error)
}

// Bridge verifies nothing itself; the web layer authenticates the caller and
// hands over their user id. The bridge loads context, makes one completion
// call, and masks every upstream failure behind ErrInternal.
type Bridge struct {
	tasks     TaskLoader
	completer Completer
}

func NewBridge(tasks TaskLoader, completer Completer) *Bridge {
	return &Bridge{tasks: tasks, completer: completer}
}

// Reply answers a single user message.
func (b *Bridge) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", apperr.ErrValidation)
	}

	// Context fetch failure is non-fatal; the assistant just answers blind.
	tasks, err := b.tasks.Recent(ctx, userID, contextTaskLimit)
	if err != nil {
		log.Printf("assistant: task context unavailable: %v", err)
		tasks = nil
	}

	system := systemPreamble + "\n\nThe user's tasks:\n" + digest.Summary(tasks)

	reply, err := b.completer.Complete(ctx, system, message)
	if err != nil {
		log.Printf("assistant: completion failed: %v", err)
		return "", apperr.ErrInternal
	}
	return reply, nil
}
