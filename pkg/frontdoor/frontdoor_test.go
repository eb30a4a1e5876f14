package frontdoor_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/campusmate/pkg/adapters/memory"
	"github.com/aretw0/campusmate/pkg/advisor"
	"github.com/aretw0/campusmate/pkg/coordinator"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/aretw0/campusmate/pkg/gatekeeper"
	"github.com/aretw0/campusmate/pkg/planner"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo answers every query with the query and the history it was given.
var echo = advisor.Funcs{
	DecideFunc: func(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
		return domain.RespondDirectly("echo:" + req.Query + "|" + req.History), nil
	},
	ModerateFunc: func(ctx context.Context, utterance string) (ports.Moderation, error) {
		if strings.Contains(utterance, "rude") {
			return ports.Moderation{Inappropriate: true, Message: "请文明用语"}, nil
		}
		return ports.Moderation{}, nil
	},
}

func newFrontDoor(t *testing.T, adv ports.Advisor, history ports.HistoryStore, opts ...frontdoor.Option) (*frontdoor.FrontDoor, *coordinator.Coordinator) {
	t.Helper()
	cat, err := domain.NewCatalogue()
	require.NoError(t, err)

	coord := coordinator.New()
	fd := frontdoor.New(coord, history, session.NewManager(memory.NewStore()), opts...)
	coord.Register(fd, gatekeeper.New(adv), planner.New(adv, cat))
	return fd, coord
}

func TestFrontDoor_Ask(t *testing.T) {
	history := memory.NewHistory(3)
	fd, coord := newFrontDoor(t, echo, history)

	reply, err := fd.Ask(context.Background(), frontdoor.Request{UserID: "alice", Text: "  你好 ", Channel: frontdoor.ChannelCLI})
	require.NoError(t, err)

	assert.Equal(t, "echo:你好|", reply.Text)
	assert.Equal(t, domain.StatusCompleted, reply.Status)
	assert.Equal(t, domain.OutcomeNoStepsExecuted, reply.Outcome)
	assert.False(t, reply.TimedOut)
	assert.True(t, strings.HasPrefix(reply.SessionID, "session_alice_"))

	s, err := coord.Session(context.Background(), reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, frontdoor.ChannelCLI, s.Metadata[frontdoor.MetaChannel])
	assert.Equal(t, "你好", s.Query)

	turns, err := history.Recent(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "你好", turns[0].User)
	assert.Equal(t, "echo:你好|", turns[0].Assistant)
}

func TestFrontDoor_HistoryFeedsNextTurn(t *testing.T) {
	history := memory.NewHistory(3)
	fd, _ := newFrontDoor(t, echo, history)
	ctx := context.Background()

	_, err := fd.Ask(ctx, frontdoor.Request{UserID: "bob", Text: "第一句"})
	require.NoError(t, err)

	reply, err := fd.Ask(ctx, frontdoor.Request{UserID: "bob", Text: "第二句"})
	require.NoError(t, err)
	assert.Equal(t, "echo:第二句|用户: 第一句\n学姐: echo:第一句|", reply.Text)

	other, err := fd.Ask(ctx, frontdoor.Request{UserID: "carol", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hi|", other.Text)
}

func TestFrontDoor_SkipsHistory(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantStatus domain.SessionStatus
	}{
		{"failed turn", "you are rude", domain.StatusFailed},
		{"empty utterance", "   ", domain.StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := memory.NewHistory(3)
			fd, _ := newFrontDoor(t, echo, history)

			reply, err := fd.Ask(context.Background(), frontdoor.Request{UserID: "dave", Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, reply.Status)

			turns, err := history.Recent(context.Background(), "dave")
			require.NoError(t, err)
			assert.Empty(t, turns)
		})
	}
}

func TestFrontDoor_RejectsBadRequests(t *testing.T) {
	fd, coord := newFrontDoor(t, echo, nil, frontdoor.WithMaxInputSize(8))

	_, err := fd.Ask(context.Background(), frontdoor.Request{UserID: " ", Text: "hi"})
	assert.ErrorIs(t, err, frontdoor.ErrMissingUserID)

	_, err = fd.Ask(context.Background(), frontdoor.Request{UserID: "erin", Text: "this is far too long"})
	assert.ErrorIs(t, err, frontdoor.ErrInputTooLarge)

	assert.Zero(t, coord.Active())
	assert.Zero(t, coord.Pending())
}

func TestFrontDoor_TimeoutIsNotAnError(t *testing.T) {
	history := memory.NewHistory(3)
	fd, coord := newFrontDoor(t, echo, history, frontdoor.WithTimeout(50*time.Millisecond))
	coord.Register(silent{})

	reply, err := fd.Ask(context.Background(), frontdoor.Request{UserID: "frank", Text: "hello"})
	require.NoError(t, err)

	assert.True(t, reply.TimedOut)
	assert.Equal(t, domain.StatusFailed, reply.Status)
	assert.Equal(t, coordinator.TimeoutApology, reply.Text)

	turns, err := history.Recent(context.Background(), "frank")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

// silent is a planner that never answers.
type silent struct{}

func (silent) ID() string { return domain.PlannerID }

func (silent) Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error) {
	return nil, nil
}

func TestFrontDoor_SerializesTurnsPerUser(t *testing.T) {
	history := memory.NewHistory(10)
	fd, _ := newFrontDoor(t, echo, history)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fd.Ask(context.Background(), frontdoor.Request{UserID: "gina", Text: "turn"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	turns, err := history.Recent(context.Background(), "gina")
	require.NoError(t, err)
	require.Len(t, turns, n)
	// Each turn saw every earlier turn, so the replies grow strictly.
	for i := 1; i < n; i++ {
		assert.Greater(t, len(turns[i].Assistant), len(turns[i-1].Assistant))
	}
}

func TestFrontDoor_HandleIgnoresMessages(t *testing.T) {
	fd, _ := newFrontDoor(t, echo, nil)
	out, err := fd.Handle(context.Background(), domain.NewMessage("s", domain.CoordinatorID, domain.FrontDoorID, domain.MessageFinalAnswer, nil))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, domain.FrontDoorID, fd.ID())
}
