// Package view owns the in-memory task list a user sees: optimistic
// mutations for latency hiding, authoritative reloads for correctness, and
// the short "completing" animation that must never race the reload.
package view

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"daylist/internal/model"
	"daylist/internal/service"
)

// State of the overall view.
type State int

const (
	StateLoading State = iota
	StateReady
)

// DefaultRemoveDelay is how long a freshly completed task stays visible with
// its checkmark before it leaves the list.
const DefaultRemoveDelay = 800 * time.Millisecond

// TaskSource is the slice of the task service the controller drives.
type TaskSource interface {
	ListIncomplete(ctx context.Context, userID string) ([]model.Task, error)
	Create(ctx context.Context, userID string, input service.CreateInput) (*model.Task, error)
	Update(ctx context.Context, userID, taskID string, input service.UpdateInput) (*model.Task, error)
	SetCompleted(ctx context.Context, userID, taskID string, completed bool) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// Options tune a controller; zero values fall back to sensible defaults.
type Options struct {
	// RemoveDelay is the cosmetic pause before a completed row disappears.
	RemoveDelay time.Duration
	// InitialLoadTimeout bounds only the first load; later reloads may show
	// a stale list instead of hanging, so they run unbounded.
	InitialLoadTimeout time.Duration
	// AfterFunc schedules the delayed removal; tests inject a synchronous one.
	AfterFunc func(d time.Duration, f func()) *time.Timer
	// OnChange fires after every visible mutation, outside the lock.
	OnChange func()
}

// Controller reconciles the visible list against the store. Every mutation
// is confirmed by the store before any visible change, so a failed call
// needs no rollback; the list simply stays as it was.
type Controller struct {
	source      TaskSource
	userID      string
	removeDelay time.Duration
	loadTimeout time.Duration
	afterFunc   func(time.Duration, func()) *time.Timer
	onChange    func()

	mu            sync.Mutex
	state         State
	loaded        bool
	visible       []model.Task
	history       []model.Task
	animating     map[string]struct{}
	reloading     bool
	reloadPending bool
}

func NewController(source TaskSource, userID string, opts Options) *Controller {
	c := &Controller{
		source:      source,
		userID:      userID,
		removeDelay: opts.RemoveDelay,
		loadTimeout: opts.InitialLoadTimeout,
		afterFunc:   opts.AfterFunc,
		onChange:    opts.OnChange,
		animating:   make(map[string]struct{}),
	}
	if c.removeDelay <= 0 {
		c.removeDelay = DefaultRemoveDelay
	}
	if c.loadTimeout <= 0 {
		c.loadTimeout = 10 * time.Second
	}
	if c.afterFunc == nil {
		c.afterFunc = time.AfterFunc
	}
	return c
}

// Load fetches the incomplete list and replaces the visible list wholesale.
// On failure the previous list stays in place; the caller shows a banner.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	first := !c.loaded
	c.state = StateLoading
	c.mu.Unlock()

	if first {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}

	tasks, err := c.source.ListIncomplete(ctx, c.userID)

	c.mu.Lock()
	if err != nil {
		// Stale-but-available beats blank.
		if c.loaded {
			c.state = StateReady
		}
		c.mu.Unlock()
		return err
	}
	sortVisible(tasks)
	c.visible = tasks
	c.loaded = true
	c.state = StateReady
	c.mu.Unlock()

	c.notify()
	return nil
}

// Invalidate requests an authoritative reload. Reloads are serialized: a
// signal arriving while one runs coalesces into exactly one follow-up.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	if c.reloading {
		c.reloadPending = true
		c.mu.Unlock()
		return
	}
	c.reloading = true
	c.mu.Unlock()

	go c.reloadLoop()
}

func (c *Controller) reloadLoop() {
	for {
		if err := c.Load(context.Background()); err != nil {
			log.Printf("[warn] task reload failed: %v", err)
		}
		c.mu.Lock()
		if c.reloadPending {
			c.reloadPending = false
			c.mu.Unlock()
			continue
		}
		c.reloading = false
		c.mu.Unlock()
		return
	}
}

// Create submits a new task and merges the authoritative row into the list,
// then triggers a background reload to catch interleaved changes.
func (c *Controller) Create(ctx context.Context, input service.CreateInput) (*model.Task, error) {
	task, err := c.source.Create(ctx, c.userID, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.upsertVisibleLocked(*task)
	c.mu.Unlock()

	c.notify()
	c.Invalidate()
	return task, nil
}

// Update edits task fields (not the completed flag; see ToggleComplete) and
// merges the returned row in place.
func (c *Controller) Update(ctx context.Context, taskID string, input service.UpdateInput) (*model.Task, error) {
	input.Completed = nil
	task, err := c.source.Update(ctx, c.userID, taskID, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.upsertVisibleLocked(*task)
	c.mu.Unlock()

	c.notify()
	c.Invalidate()
	return task, nil
}

// ToggleComplete flips completion. The store confirms first; only then does
// the view change. Completion keeps the row visible but animating, records
// it in the history buffer, and schedules the delayed removal plus reload.
// Un-completion puts the row back and drops it from history.
func (c *Controller) ToggleComplete(ctx context.Context, taskID string, completed bool) error {
	task, err := c.source.SetCompleted(ctx, c.userID, taskID, completed)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if completed {
		c.upsertVisibleLocked(*task)
		c.animating[task.ID] = struct{}{}
		c.history = append([]model.Task{*task}, c.history...)
		c.mu.Unlock()
		c.notify()

		id := task.ID
		c.afterFunc(c.removeDelay, func() {
			c.mu.Lock()
			// Un-completing during the animation window clears the flag;
			// a stale timer must not remove the restored row.
			if _, ok := c.animating[id]; !ok {
				c.mu.Unlock()
				return
			}
			delete(c.animating, id)
			c.removeVisibleLocked(id)
			c.mu.Unlock()
			c.notify()
			// The reload, not the removal, is what guarantees the list
			// matches store truth.
			c.Invalidate()
		})
		return nil
	}

	c.upsertVisibleLocked(*task)
	delete(c.animating, task.ID)
	c.removeHistoryLocked(task.ID)
	c.mu.Unlock()
	c.notify()
	return nil
}

// Delete removes the task everywhere; a recently completed task may sit in
// both the visible list and the history buffer.
func (c *Controller) Delete(ctx context.Context, taskID string) error {
	if err := c.source.Delete(ctx, c.userID, taskID); err != nil {
		return err
	}

	c.mu.Lock()
	c.removeVisibleLocked(taskID)
	c.removeHistoryLocked(taskID)
	delete(c.animating, taskID)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Tasks returns a copy of the visible list in (date, created_at) order.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.visible))
	copy(out, c.visible)
	return out
}

// History returns the completed-history buffer, most recent first.
func (c *Controller) History() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.history))
	copy(out, c.history)
	return out
}

// IsAnimating reports whether the task is mid checkmark animation.
func (c *Controller) IsAnimating(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.animating[taskID]
	return ok
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) upsertVisibleLocked(task model.Task) {
	for i := range c.visible {
		if c.visible[i].ID == task.ID {
			c.visible[i] = task
			sortVisible(c.visible)
			return
		}
	}
	c.visible = append(c.visible, task)
	sortVisible(c.visible)
}

func (c *Controller) removeVisibleLocked(taskID string) {
	for i := range c.visible {
		if c.visible[i].ID == taskID {
			c.visible = append(c.visible[:i], c.visible[i+1:]...)
			return
		}
	}
}

func (c *Controller) removeHistoryLocked(taskID string) {
	for i := range c.history {
		if c.history[i].ID == taskID {
			c.history = append(c.history[:i], c.history[i+1:]...)
			return
		}
	}
}

func sortVisible(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].Date.Equal(tasks[j].Date) {
			return tasks[i].Date.Before(tasks[j].Date)
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
