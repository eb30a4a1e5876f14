package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/session"
	lru "github.com/hashicorp/golang-lru/v2"
)

// User-facing texts for failures that have no better explanation.
const (
	GenericApology = "抱歉，学姐在处理你的问题时遇到了一点小状况，请稍后再试一次～"
	TimeoutApology = "抱歉，这个问题处理得有点久，学姐先停下来了，请稍后再问一次吧～"
)

const (
	// DefaultTimeout is the run-until-terminal budget when the caller passes zero.
	DefaultTimeout = 60 * time.Second
	// DefaultHandleTimeout bounds a single actor invocation.
	DefaultHandleTimeout = 90 * time.Second
	// DefaultRetention is the number of terminal sessions kept for retrieval.
	DefaultRetention = 1024
)

// entry is a live session plus its completion signal.
type entry struct {
	session    *domain.Session
	done       chan struct{}
	dispatched time.Time
	waiters    int // RunUntilTerminal callers that have not collected the outcome yet
}

// Coordinator owns in-flight sessions, the shared FIFO queue and the drive loop.
// Exactly one message is processed at a time; Enqueue and snapshots are safe from any goroutine.
type Coordinator struct {
	driveMu sync.Mutex

	mu       sync.Mutex
	queue    []domain.Message
	changed  chan struct{} // Closed and replaced whenever the queue grows or a session terminates
	sessions map[string]*entry
	pinned   map[string]*entry // Terminal but still awaited; moved to retained on collection
	retained *lru.Cache[string, *domain.Session]
	actors   map[string]ports.Actor

	archive       *session.Manager
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	timeout       time.Duration
	handleTimeout time.Duration
	retention     int
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger configures a logger for the Coordinator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithHooks installs lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithArchive persists every terminal session through the manager.
func WithArchive(m *session.Manager) Option {
	return func(c *Coordinator) {
		c.archive = m
	}
}

// WithRetention sets how many terminal sessions stay readable in memory.
func WithRetention(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.retention = n
		}
	}
}

// WithTimeout sets the default budget of RunUntilTerminal.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHandleTimeout bounds each actor invocation.
func WithHandleTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.handleTimeout = d
		}
	}
}

// New creates a Coordinator. Actors are added with Register.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		changed:       make(chan struct{}),
		sessions:      make(map[string]*entry),
		pinned:        make(map[string]*entry),
		actors:        make(map[string]ports.Actor),
		logger:        logging.NewNop(),
		timeout:       DefaultTimeout,
		handleTimeout: DefaultHandleTimeout,
		retention:     DefaultRetention,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Only fails for a non-positive size, which WithRetention rules out.
	c.retained, _ = lru.New[string, *domain.Session](c.retention)
	return c
}

// Register makes an actor routable under its ID. Registering an ID twice replaces the actor.
func (c *Coordinator) Register(actors ...ports.Actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range actors {
		c.actors[a.ID()] = a
	}
}

// RegisterSession creates a session in pending_review.
func (c *Coordinator) RegisterSession(sessionID, userID, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, live := c.sessions[sessionID]
	_, pinned := c.pinned[sessionID]
	if live || pinned || c.retained.Contains(sessionID) {
		c.logger.Error("duplicate session registration", "session_id", sessionID, "user_id", userID)
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSession, sessionID)
	}
	c.sessions[sessionID] = &entry{
		session: domain.NewSession(sessionID, userID, query),
		done:    make(chan struct{}),
	}
	return nil
}

// Annotate attaches metadata to a live session (e.g. the inbound channel).
func (c *Coordinator) Annotate(sessionID, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.session.Metadata[key] = value
	return nil
}

// Enqueue appends a message to the FIFO queue and wakes waiters.
func (c *Coordinator) Enqueue(msg domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueueLocked(msg)
}

func (c *Coordinator) enqueueLocked(msg domain.Message) {
	c.queue = append(c.queue, msg)
	c.broadcastLocked()
}

func (c *Coordinator) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Coordinator) pop() (domain.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return domain.Message{}, false
	}
	msg := c.queue[0]
	c.queue[0] = domain.Message{}
	c.queue = c.queue[1:]
	return msg, true
}

// Pending returns the number of queued messages.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// DriveOne pops the head message and routes it. It returns false if the queue was empty.
func (c *Coordinator) DriveOne(ctx context.Context) bool {
	c.driveMu.Lock()
	drove := c.driveLocked(ctx)
	c.driveMu.Unlock()
	c.wakeAfterDrive(drove)
	return drove
}

// tryDriveOne is DriveOne that gives up instead of waiting for another driver.
func (c *Coordinator) tryDriveOne(ctx context.Context) bool {
	if !c.driveMu.TryLock() {
		return false
	}
	drove := c.driveLocked(ctx)
	c.driveMu.Unlock()
	c.wakeAfterDrive(drove)
	return drove
}

// driveLocked routes the head message. Caller holds driveMu.
func (c *Coordinator) driveLocked(ctx context.Context) bool {
	msg, ok := c.pop()
	if !ok {
		return false
	}
	c.route(ctx, msg)
	return true
}

// wakeAfterDrive lets waiters that found the drive lock busy take over.
func (c *Coordinator) wakeAfterDrive(drove bool) {
	if !drove {
		return
	}
	c.mu.Lock()
	c.broadcastLocked()
	c.mu.Unlock()
}

// Drain drives until the queue is empty and returns the number of messages processed.
func (c *Coordinator) Drain(ctx context.Context) int {
	n := 0
	for c.DriveOne(ctx) {
		n++
	}
	return n
}

// RunUntilTerminal drives the queue until the session is terminal or the timeout elapses.
// On timeout the session is failed and the returned error wraps domain.ErrTimeout;
// the outcome still carries the user-facing text.
func (c *Coordinator) RunUntilTerminal(ctx context.Context, sessionID string, timeout time.Duration) (domain.FinalOutcome, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	deadline := time.Now().Add(timeout)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	defer c.hold(sessionID)()

	for {
		c.mu.Lock()
		snapshot, done, ok := c.lookupLocked(sessionID)
		changed := c.changed
		c.mu.Unlock()

		if !ok {
			return c.archived(ctx, sessionID)
		}
		if snapshot.Status.Terminal() {
			return domain.OutcomeOf(snapshot), nil
		}
		if err := ctx.Err(); err != nil {
			return c.expire(ctx, sessionID, "canceled", err)
		}
		if !time.Now().Before(deadline) {
			return c.expire(ctx, sessionID, "timeout", domain.ErrTimeout)
		}

		if c.tryDriveOne(ctx) {
			continue
		}

		select {
		case <-done:
		case <-changed:
		case <-timer.C:
			return c.expire(ctx, sessionID, "timeout", domain.ErrTimeout)
		case <-ctx.Done():
			return c.expire(ctx, sessionID, "canceled", ctx.Err())
		}
	}
}

func (c *Coordinator) expire(ctx context.Context, sessionID, reason string, cause error) (domain.FinalOutcome, error) {
	c.fail(context.WithoutCancel(ctx), sessionID, reason, TimeoutApology)

	s, err := c.Session(ctx, sessionID)
	if err != nil {
		return domain.FinalOutcome{}, err
	}
	out := domain.OutcomeOf(s)
	if s.FailureReason != reason {
		// Finished on its own while we were giving up.
		return out, nil
	}
	c.logger.Warn("session forced to failed", "session_id", sessionID, "reason", reason)
	return out, fmt.Errorf("session %s: %w", sessionID, cause)
}

// hold pins a live session so that it outlives retention until the returned release is called.
func (c *Coordinator) hold(sessionID string) (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[sessionID]
	if !ok {
		e, ok = c.pinned[sessionID]
	}
	if !ok {
		return func() {}
	}
	e.waiters++
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		e.waiters--
		if e.waiters == 0 && c.pinned[sessionID] == e {
			delete(c.pinned, sessionID)
			c.retained.Add(sessionID, e.session)
		}
	}
}

// archived is the outcome of a session that already left memory.
func (c *Coordinator) archived(ctx context.Context, sessionID string) (domain.FinalOutcome, error) {
	if c.archive != nil {
		s, err := c.archive.Load(ctx, sessionID)
		if err == nil && s.Status.Terminal() {
			return domain.OutcomeOf(s), nil
		}
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return domain.FinalOutcome{}, err
		}
	}
	return domain.FinalOutcome{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
}

// lookupLocked returns a snapshot of a live, pinned or retained session and its completion signal.
func (c *Coordinator) lookupLocked(sessionID string) (*domain.Session, <-chan struct{}, bool) {
	if e, ok := c.sessions[sessionID]; ok {
		return e.session.Clone(), e.done, true
	}
	if e, ok := c.pinned[sessionID]; ok {
		return e.session.Clone(), e.done, true
	}
	if s, ok := c.retained.Get(sessionID); ok {
		closed := make(chan struct{})
		close(closed)
		return s.Clone(), closed, true
	}
	return nil, nil, false
}

// Session returns a read-only snapshot of a live, retained or archived session.
func (c *Coordinator) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	c.mu.Lock()
	s, _, ok := c.lookupLocked(sessionID)
	c.mu.Unlock()
	if ok {
		return s, nil
	}
	if c.archive != nil {
		return c.archive.Load(ctx, sessionID)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
}

// Active returns the number of non-terminal sessions.
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
