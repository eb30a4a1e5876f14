package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/campusmate/internal/cli"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	mu   sync.Mutex
	reqs []frontdoor.Request
	err  error
}

func (f *fakeAsker) Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return frontdoor.Reply{}, f.err
	}
	if req.Text == "哪里" {
		return frontdoor.Reply{Text: "哪个校区？", Status: domain.StatusPendingUserInput}, nil
	}
	return frontdoor.Reply{Text: "答:" + req.Text, Status: domain.StatusCompleted}, nil
}

func TestChat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		greet     bool
		wantTexts []string
		wantOut   []string
	}{
		{
			name:      "exit stops reading",
			input:     "你好\n\n   \nexit\n不会发送\n",
			wantTexts: []string{"你好"},
			wantOut:   []string{cli.AnswerPrefix + "答:你好\n", cli.Goodbye},
		},
		{
			name:      "eof ends the session",
			input:     "一\n二",
			wantTexts: []string{"一", "二"},
			wantOut:   []string{"答:一", "答:二"},
		},
		{
			name:      "greeting sends an empty utterance",
			input:     "",
			greet:     true,
			wantTexts: []string{""},
			wantOut:   []string{cli.AnswerPrefix + "答:\n"},
		},
		{
			name:      "clarification adds a hint",
			input:     "哪里\n",
			wantTexts: []string{"哪里"},
			wantOut:   []string{"哪个校区？", "补充一下细节"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &fakeAsker{}
			var out bytes.Buffer
			err := cli.Chat(context.Background(), asker, cli.ChatOptions{
				UserID: "cli_user",
				In:     strings.NewReader(tt.input),
				Out:    &out,
				Greet:  tt.greet,
			})
			require.NoError(t, err)

			var texts []string
			for _, r := range asker.reqs {
				assert.Equal(t, "cli_user", r.UserID)
				assert.Equal(t, frontdoor.ChannelCLI, r.Channel)
				texts = append(texts, r.Text)
			}
			assert.Equal(t, tt.wantTexts, texts)
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestChat_Errors(t *testing.T) {
	var out bytes.Buffer
	asker := &fakeAsker{err: frontdoor.ErrInputTooLarge}
	err := cli.Chat(context.Background(), asker, cli.ChatOptions{In: strings.NewReader("长长长\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[!]")

	boom := errors.New("boom")
	err = cli.Chat(context.Background(), &fakeAsker{err: boom}, cli.ChatOptions{In: strings.NewReader("hi\n"), Out: &out})
	assert.ErrorIs(t, err, boom)
}

func TestChat_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	require.NoError(t, cli.Chat(ctx, &fakeAsker{}, cli.ChatOptions{In: r, Out: &out}))
}
