package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daylist/internal/apperr"
	"daylist/internal/model"
)

// TaskRepository handles CRUD for tasks. Every query is scoped by the owning
// user, so a row belonging to someone else reads the same as a missing row.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("%w: create task: %v", apperr.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: find task: %v", apperr.ErrStoreUnavailable, err)
	}
}

// ListIncomplete returns open tasks in stable task-of-the-day order.
func (r *TaskRepository) ListIncomplete(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, false).
		Order("date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: list incomplete: %v", apperr.ErrStoreUnavailable, err)
	}
	return tasks, nil
}

// ListCompleted returns finished tasks, most recently finished first.
func (r *TaskRepository) ListCompleted(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: list completed: %v", apperr.ErrStoreUnavailable, err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListAll(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", apperr.ErrStoreUnavailable, err)
	}
	return tasks, nil
}

// ListByDate returns tasks scheduled on the given calendar day.
func (r *TaskRepository) ListByDate(ctx context.Context, userID string, day time.Time) ([]model.Task, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: list by date: %v", apperr.ErrStoreUnavailable, err)
	}
	return tasks, nil
}

// ListRecent returns the caller's most recently created tasks, newest first.
func (r *TaskRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: list recent: %v", apperr.ErrStoreUnavailable, err)
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("%w: save task: %v", apperr.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("%w: delete task: %v", apperr.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
