package frontdoor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/coordinator"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/session"
)

// ErrMissingUserID is returned when a request has no user.
var ErrMissingUserID = errors.New("user id is required")

// Channels a request can arrive on.
const (
	ChannelCLI    = "cli"
	ChannelHTTP   = "http"
	ChannelWeChat = "wechat"
	ChannelMCP    = "mcp"
)

// MetaChannel is the session metadata key holding the inbound channel.
const MetaChannel = "channel"

// Request is one user utterance.
type Request struct {
	UserID  string
	Text    string
	Channel string
}

// Reply is what the user gets back for one utterance.
type Reply struct {
	SessionID string               `json:"session_id"`
	Text      string               `json:"reply"`
	Status    domain.SessionStatus `json:"status"`
	Outcome   domain.Outcome       `json:"outcome"`
	TimedOut  bool                 `json:"timed_out,omitempty"`
}

// FrontDoor turns utterances into sessions and waits for their outcome.
type FrontDoor struct {
	coord    *coordinator.Coordinator
	history  ports.HistoryStore
	sessions *session.Manager
	logger   *slog.Logger
	timeout  time.Duration
	maxInput int
}

// Option configures the FrontDoor.
type Option func(*FrontDoor)

// WithLogger configures a logger for the FrontDoor.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FrontDoor) {
		f.logger = logger
	}
}

// WithTimeout bounds each turn. Zero uses the coordinator default.
func WithTimeout(d time.Duration) Option {
	return func(f *FrontDoor) {
		f.timeout = d
	}
}

// WithMaxInputSize overrides the sanitizer limit.
func WithMaxInputSize(n int) Option {
	return func(f *FrontDoor) {
		f.maxInput = n
	}
}

// New creates a FrontDoor. history may be nil to run without conversation memory.
// Turns of the same user are serialized through sessions.
func New(coord *coordinator.Coordinator, history ports.HistoryStore, sessions *session.Manager, opts ...Option) *FrontDoor {
	f := &FrontDoor{
		coord:    coord,
		history:  history,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FrontDoor) ID() string { return domain.FrontDoorID }

// Handle accepts nothing in the normal flow; outcomes are collected by Ask.
func (f *FrontDoor) Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error) {
	f.logger.Debug("front door ignoring message", "type", msg.Type, "session_id", msg.SessionID)
	return nil, nil
}

// Ask runs one turn to completion. A timeout is not an error: the reply then
// carries the apology text and TimedOut is set.
func (f *FrontDoor) Ask(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Reply{}, ErrMissingUserID
	}
	text, err := SanitizeInput(req.Text, f.maxInput)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	err = f.sessions.WithLock(ctx, "turn:"+req.UserID, func(ctx context.Context) error {
		var err error
		reply, err = f.turn(ctx, req.UserID, text, req.Channel)
		return err
	})
	return reply, err
}

func (f *FrontDoor) turn(ctx context.Context, userID, text, channel string) (Reply, error) {
	log := f.logger.With("user_id", userID, "channel", channel)

	history := ""
	if f.history != nil {
		turns, err := f.history.Recent(ctx, userID)
		if err != nil {
			log.Warn("failed to load history, continuing without", "err", err)
		}
		history = domain.FormatHistory(turns)
	}

	sessionID := domain.NewSessionID(userID)
	if err := f.coord.RegisterSession(sessionID, userID, text); err != nil {
		return Reply{}, fmt.Errorf("failed to start session: %w", err)
	}
	if channel != "" {
		_ = f.coord.Annotate(sessionID, MetaChannel, channel)
	}
	f.coord.Enqueue(domain.NewMessage(sessionID, domain.FrontDoorID, domain.CoordinatorID, domain.MessageNewQuery,
		domain.QueryPayload{UserID: userID, Query: text, History: history}))

	out, err := f.coord.RunUntilTerminal(ctx, sessionID, f.timeout)
	timedOut := errors.Is(err, domain.ErrTimeout)
	if err != nil && !timedOut {
		return Reply{}, err
	}
	if timedOut {
		log.Warn("turn timed out", "session_id", sessionID)
	}

	reply := Reply{
		SessionID: out.SessionID,
		Text:      out.Text,
		Status:    out.Status,
		Outcome:   out.Outcome,
		TimedOut:  timedOut,
	}
	if f.history != nil && out.Status != domain.StatusFailed && text != "" {
		turn := domain.Turn{User: text, Assistant: out.Text, At: time.Now()}
		if err := f.history.Append(context.WithoutCancel(ctx), userID, turn); err != nil {
			log.Warn("failed to record history", "err", err)
		}
	}
	log.Debug("turn finished", "session_id", sessionID, "status", out.Status, "outcome", out.Outcome)
	return reply, nil
}
