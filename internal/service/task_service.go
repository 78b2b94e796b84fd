package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/repository"
)

// ListFilter selects which slice of the task list to return.
type ListFilter string

const (
	FilterIncomplete ListFilter = "incomplete"
	FilterCompleted  ListFilter = "completed"
	FilterAll        ListFilter = "all"
	FilterByDate     ListFilter = "by-date"
)

// CreateInput carries the fields a user supplies when adding a task.
type CreateInput struct {
	Title       string
	Description string
	Priority    model.Priority
	Date        *time.Time
	DueDate     *time.Time
}

// UpdateInput carries a partial task edit; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Date        *time.Time
	DueDate     *time.Time
	Completed   *bool
}

// TaskService wraps task business rules over the repository: title and
// priority validation, the date-defaults-to-today rule, and keeping
// completed_at in lockstep with the completed flag.
type TaskService struct {
	repo *repository.TaskRepository
	now  func() time.Time
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, input.Priority)
	}

	date := dayOf(s.now())
	if input.Date != nil {
		date = dayOf(*input.Date)
	}

	task := model.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Date:        date,
		DueDate:     input.DueDate,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial edit. A completed transition recomputes
// completed_at: stamped on false→true, cleared on true→false.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input UpdateInput) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.Date != nil {
		task.Date = dayOf(*input.Date)
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Completed != nil && *input.Completed != task.Completed {
		if *input.Completed {
			done := s.now()
			task.CompletedAt = &done
		} else {
			task.CompletedAt = nil
		}
		task.Completed = *input.Completed
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetCompleted toggles the completion flag on its own; the web layer and the
// view controller both reach for this instead of building an UpdateInput.
func (s *TaskService) SetCompleted(ctx context.Context, userID, taskID string, completed bool) (*model.Task, error) {
	return s.Update(ctx, userID, taskID, UpdateInput{Completed: &completed})
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	return s.repo.Delete(ctx, userID, taskID)
}

// List fetches tasks per the filter. FilterByDate requires a day; the other
// filters ignore it.
func (s *TaskService) List(ctx context.Context, userID string, filter ListFilter, day *time.Time) ([]model.Task, error) {
	switch filter {
	case FilterIncomplete, "":
		return s.repo.ListIncomplete(ctx, userID)
	case FilterCompleted:
		return s.repo.ListCompleted(ctx, userID)
	case FilterAll:
		return s.repo.ListAll(ctx, userID)
	case FilterByDate:
		if day == nil {
			return nil, fmt.Errorf("%w: date filter requires a date", apperr.ErrValidation)
		}
		return s.repo.ListByDate(ctx, userID, *day)
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", apperr.ErrValidation, filter)
	}
}

// ListIncomplete is the reload path of the view controller.
func (s *TaskService) ListIncomplete(ctx context.Context, userID string) ([]model.Task, error) {
	return s.repo.ListIncomplete(ctx, userID)
}

// Recent returns up to limit of the caller's newest tasks for prompt context.
func (s *TaskService) Recent(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	return s.repo.ListRecent(ctx, userID, limit)
}

// dayOf truncates a timestamp to its calendar date, keeping the location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
