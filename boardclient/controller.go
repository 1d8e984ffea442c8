package boardclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

// ErrUnknownItem means the dragged item is not in the local view.
var ErrUnknownItem = errors.New("item not found in local view")

// ErrUnknownProject means the requested project is not visible to the caller.
var ErrUnknownProject = errors.New("project not found")

// MoveState tracks a single draggable item:
// Idle -> OptimisticallyMoved -> {Confirmed | RolledBack} -> Idle.
type MoveState int

const (
	StateIdle MoveState = iota
	StateOptimisticallyMoved
)

type pendingMove struct {
	itemID uuid.UUID
	from   models.TaskStatus
}

type pendingReschedule struct {
	itemID   uuid.UUID
	fromDate time.Time
}

// Controller applies drag-and-drop moves to the local board and calendar
// before the server round-trip completes, and reverses them exactly when a
// request fails. Overlapping moves of the same item are serialized so a late
// rollback can never clobber a newer optimistic state.
type Controller struct {
	api     *Client
	timeout time.Duration

	// OnError, when set, surfaces rollback causes to the user.
	OnError func(error)

	mu       sync.Mutex
	board    *Board
	calendar *Calendar
	states   map[uuid.UUID]MoveState
	undo     []pendingMove
	undoRes  []pendingReschedule

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

func NewController(api *Client) *Controller {
	return &Controller{
		api:      api,
		timeout:  defaultTimeout,
		board:    NewBoard(nil),
		calendar: NewCalendar(nil),
		states:   make(map[uuid.UUID]MoveState),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetTasks replaces the board contents, e.g. after loading a project.
func (c *Controller) SetTasks(tasks []*models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = NewBoard(tasks)
}

// SetEvents replaces the calendar contents.
func (c *Controller) SetEvents(events []*models.ScheduleEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calendar = NewCalendar(events)
}

// LoadBoard fetches the caller's projects and shows the given project's tasks.
func (c *Controller) LoadBoard(ctx context.Context, projectID uuid.UUID) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	projects, err := c.api.ListProjects(reqCtx)
	if err != nil {
		return err
	}
	for _, project := range projects {
		if project.ID == projectID {
			c.SetTasks(project.Tasks)
			return nil
		}
	}
	return ErrUnknownProject
}

// LoadSchedule fetches the caller's events and resets the calendar view.
func (c *Controller) LoadSchedule(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	events, err := c.api.ListSchedule(reqCtx)
	if err != nil {
		return err
	}
	c.SetEvents(events)
	return nil
}

func (c *Controller) Column(status models.TaskStatus) []*models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Column(status)
}

func (c *Controller) Day(day time.Time) []*models.ScheduleEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calendar.Day(day)
}

func (c *Controller) State(itemID uuid.UUID) MoveState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[itemID]
}

// MoveTask handles a drop onto another board column. The local view changes
// before the request is sent; any failure (rejection, network error, timeout)
// puts the task back in its source column and reports the error.
func (c *Controller) MoveTask(ctx context.Context, taskID uuid.UUID, to models.TaskStatus) error {
	lock := c.itemLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	task, ok := c.board.remove(taskID)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownItem
	}
	from := task.Status
	if from == to {
		c.board.insert(task)
		c.mu.Unlock()
		return nil
	}
	moved := *task
	moved.Status = to
	c.board.insert(&moved)
	c.undo = append(c.undo, pendingMove{itemID: taskID, from: from})
	c.states[taskID] = StateOptimisticallyMoved
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	updated, err := c.api.MoveTask(reqCtx, taskID, to)

	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.popMove(taskID)
	delete(c.states, taskID)

	if err != nil {
		// inverse of the optimistic apply: back to the source column
		if current, ok := c.board.remove(taskID); ok {
			reverted := *current
			reverted.Status = pending.from
			c.board.insert(&reverted)
		}
		c.notify(err)
		return err
	}

	// adopt the server's canonical entity
	if _, ok := c.board.remove(taskID); ok {
		c.board.insert(updated)
	}
	return nil
}

// RescheduleEvent handles a drop onto another calendar day.
func (c *Controller) RescheduleEvent(ctx context.Context, eventID uuid.UUID, day time.Time) error {
	lock := c.itemLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	event, ok := c.calendar.remove(eventID)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownItem
	}
	fromDate := event.Date
	moved := *event
	moved.Date = event.WithDay(day)
	c.calendar.insert(&moved)
	c.undoRes = append(c.undoRes, pendingReschedule{itemID: eventID, fromDate: fromDate})
	c.states[eventID] = StateOptimisticallyMoved
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	updated, err := c.api.RescheduleEvent(reqCtx, eventID, day)

	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.popReschedule(eventID)
	delete(c.states, eventID)

	if err != nil {
		if current, ok := c.calendar.remove(eventID); ok {
			reverted := *current
			reverted.Date = pending.fromDate
			c.calendar.insert(&reverted)
		}
		c.notify(err)
		return err
	}

	if _, ok := c.calendar.remove(eventID); ok {
		c.calendar.insert(updated)
	}
	return nil
}

func (c *Controller) notify(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// one mutex per item serializes overlapping drags on the same item
func (c *Controller) itemLock(id uuid.UUID) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}

func (c *Controller) popMove(id uuid.UUID) pendingMove {
	for i := len(c.undo) - 1; i >= 0; i-- {
		if c.undo[i].itemID == id {
			pending := c.undo[i]
			c.undo = append(c.undo[:i], c.undo[i+1:]...)
			return pending
		}
	}
	return pendingMove{itemID: id}
}

func (c *Controller) popReschedule(id uuid.UUID) pendingReschedule {
	for i := len(c.undoRes) - 1; i >= 0; i-- {
		if c.undoRes[i].itemID == id {
			pending := c.undoRes[i]
			c.undoRes = append(c.undoRes[:i], c.undoRes[i+1:]...)
			return pending
		}
	}
	return pendingReschedule{itemID: id}
}
