// Package app sequences startup and turns user intents into persisted task
// changes.
//
// A Controller starts NotReady. Start loads the persisted tasks once and
// moves it to Ready; until then every intent fails with ErrNotReady.
//
// Intents are handed to a single consumer goroutine and processed strictly
// one at a time in arrival order: transform the current collection, save it,
// then publish it. An intent never sees the collection from before a
// previous intent's save completed, so rapid back-to-back intents cannot
// lose updates. A failed intent changes nothing and publishes nothing.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/bucketlist-go/internal/task"
)

// State is the startup state of a Controller.
type State int32

const (
	// NotReady means persisted tasks have not been loaded yet.
	NotReady State = iota
	// Ready means tasks are loaded and intents are accepted.
	Ready
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not-ready"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Intent names a user-triggered mutation.
type Intent string

const (
	IntentAdd    Intent = "add"
	IntentDelete Intent = "delete"
	IntentToggle Intent = "toggle"
	IntentUpdate Intent = "update"
	IntentClear  Intent = "delete-completed"
)

var (
	// ErrNotReady is returned for intents issued before Start succeeded.
	ErrNotReady = errors.New("tasks are not loaded yet")
	// ErrAlreadyStarted is returned when Start is called after it succeeded.
	ErrAlreadyStarted = errors.New("controller already started")
	// ErrEmptyText is returned by AddTask for empty or blank text.
	ErrEmptyText = errors.New("task text is empty")
	// ErrEmptyID is returned by UpdateTask for a task without an id.
	ErrEmptyID = errors.New("task id is empty")
	// ErrClosed is returned for intents issued after Close.
	ErrClosed = errors.New("controller closed")
)

// Snapshot is published to subscribers after every successful intent.
type Snapshot struct {
	Seq    uint64
	Intent Intent
	Tasks  task.Collection
}

// Observer receives intent outcomes, e.g. for metrics.
type Observer interface {
	ObserveIntent(intent string, err error, d time.Duration)
	SetTasks(total, completed int)
}

type nopObserver struct{}

func (nopObserver) ObserveIntent(string, error, time.Duration) {}
func (nopObserver) SetTasks(int, int)                          {}

// Option configures a Controller.
type Option func(*Controller)

// WithIDSource sets the id allocator used by AddTask.
func WithIDSource(ids task.IDSource) Option {
	return func(c *Controller) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the intent observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

type request struct {
	ctx    context.Context
	intent Intent
	apply  func(task.Collection) (task.Collection, error)
	reply  chan error
}

// Controller exposes the bucket list intents on top of a task.Store.
type Controller struct {
	store    *task.Store
	ids      task.IDSource
	logger   *log.Logger
	observer Observer

	state    atomic.Int32
	startMu  sync.Mutex
	started  bool
	requests chan request
	quit     chan struct{}
	stopped  chan struct{}
	closeMu  sync.Once
	closeErr error

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	// seq is only touched by the consumer goroutine.
	seq uint64
}

// New returns a NotReady controller over store.
func New(store *task.Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		ids:      task.UUIDSource{},
		logger:   log.Default(),
		observer: nopObserver{},
		requests: make(chan request),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		subs:     make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current startup state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Start loads the persisted tasks and moves the controller to Ready. If the
// load fails the controller stays NotReady and Start may be called again.
func (c *Controller) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	select {
	case <-c.quit:
		return ErrClosed
	default:
	}
	if c.started {
		return ErrAlreadyStarted
	}

	tasks, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Error("Loading tasks failed", "err", err)
		return err
	}

	c.started = true
	c.observer.SetTasks(tasks.Len(), tasks.CountCompleted())
	c.state.Store(int32(Ready))
	go c.run()

	c.logger.Info("Tasks loaded", "count", tasks.Len())
	return nil
}

// Tasks returns the current collection.
func (c *Controller) Tasks() task.Collection {
	return c.store.Current()
}

// Subscribe registers fn to be called with a Snapshot after every successful
// intent. fn runs on the consumer goroutine and must not issue intents
// synchronously. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// AddTask adds a new task with text. Blank text is rejected with
// ErrEmptyText and nothing is written.
func (c *Controller) AddTask(ctx context.Context, text string) (task.Task, error) {
	if c.State() != Ready {
		return task.Task{}, ErrNotReady
	}
	if strings.TrimSpace(text) == "" {
		return task.Task{}, ErrEmptyText
	}

	var created task.Task
	err := c.submit(ctx, IntentAdd, func(cur task.Collection) (task.Collection, error) {
		next, t := task.Add(cur, text, c.ids)
		created = t
		return next, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// DeleteTask removes the task with id. Deleting an unknown id succeeds.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	return c.submit(ctx, IntentDelete, func(cur task.Collection) (task.Collection, error) {
		return task.Remove(cur, id), nil
	})
}

// ToggleTask flips the completed flag of the task with id.
func (c *Controller) ToggleTask(ctx context.Context, id string) error {
	return c.submit(ctx, IntentToggle, func(cur task.Collection) (task.Collection, error) {
		return task.ToggleCompleted(cur, id)
	})
}

// UpdateTask replaces the task stored under t.ID with t, adding it if absent.
func (c *Controller) UpdateTask(ctx context.Context, t task.Task) error {
	if c.State() == Ready && t.ID == "" {
		return ErrEmptyID
	}
	return c.submit(ctx, IntentUpdate, func(cur task.Collection) (task.Collection, error) {
		return task.Update(cur, t), nil
	})
}

// DeleteAllCompleted removes every completed task.
func (c *Controller) DeleteAllCompleted(ctx context.Context) error {
	return c.submit(ctx, IntentClear, func(cur task.Collection) (task.Collection, error) {
		return task.RemoveAllCompleted(cur), nil
	})
}

// Close stops the consumer and closes the store. Intents issued afterwards
// fail with ErrClosed.
func (c *Controller) Close() error {
	c.closeMu.Do(func() {
		close(c.quit)

		c.startMu.Lock()
		started := c.started
		c.startMu.Unlock()
		if started {
			<-c.stopped
		}
		c.closeErr = c.store.Close()
	})
	return c.closeErr
}

// submit hands one intent to the consumer and waits for its outcome.
func (c *Controller) submit(ctx context.Context, intent Intent, apply func(task.Collection) (task.Collection, error)) error {
	if c.State() != Ready {
		return ErrNotReady
	}
	req := request{
		ctx:    ctx,
		intent: intent,
		apply:  apply,
		reply:  make(chan error, 1),
	}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.quit:
		return ErrClosed
	}
	// Once received, the consumer finishes the request before it looks at
	// quit again, so a reply always arrives.
	return <-req.reply
}

func (c *Controller) run() {
	defer close(c.stopped)
	for {
		select {
		case <-c.quit:
			return
		case req := <-c.requests:
			req.reply <- c.process(req)
		}
	}
}

func (c *Controller) process(req request) error {
	start := time.Now()
	next, err := c.transformAndSave(req)
	c.observer.ObserveIntent(string(req.intent), err, time.Since(start))
	if err != nil {
		c.logger.Error("Intent failed", "intent", req.intent, "err", err)
		return err
	}

	c.seq++
	c.observer.SetTasks(next.Len(), next.CountCompleted())
	c.logger.Debug("Intent applied", "intent", req.intent, "seq", c.seq, "count", next.Len())
	c.publish(Snapshot{Seq: c.seq, Intent: req.intent, Tasks: next})
	return nil
}

func (c *Controller) transformAndSave(req request) (task.Collection, error) {
	if err := req.ctx.Err(); err != nil {
		return task.Collection{}, err
	}
	next, err := req.apply(c.store.Current())
	if err != nil {
		return task.Collection{}, err
	}
	if err := c.store.Save(req.ctx, next); err != nil {
		return task.Collection{}, err
	}
	return next, nil
}

func (c *Controller) publish(s Snapshot) {
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
