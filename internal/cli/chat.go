package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/campusmate/internal/presentation/tui"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
)

// Prompts printed by the chat REPL.
const (
	UserPrompt   = "你> "
	AnswerPrefix = "学姐> "
	Goodbye      = "拜拜～下次再来找学姐玩！"
)

// Asker runs one user turn to completion.
type Asker interface {
	Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error)
}

// ChatOptions configures Chat.
type ChatOptions struct {
	UserID string
	In     io.Reader
	Out    io.Writer
	Render tui.Renderer
	// Greet sends an empty utterance first so the assistant introduces itself.
	Greet bool
}

// Chat reads one line per turn from In until EOF, "exit" or ctx is done.
func Chat(ctx context.Context, asker Asker, opts ChatOptions) error {
	if opts.Render == nil {
		opts.Render = tui.Plain
	}
	if opts.Greet {
		if err := turn(ctx, asker, opts, ""); err != nil {
			return err
		}
	}

	lines := scanLines(ctx, opts.In)
	for {
		fmt.Fprint(opts.Out, UserPrompt)
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(opts.Out)
			return nil
		}

		text := strings.TrimSpace(line)
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit", "/q", "再见":
			fmt.Fprintln(opts.Out, AnswerPrefix+Goodbye)
			return nil
		}
		if err := turn(ctx, asker, opts, text); err != nil {
			return err
		}
	}
}

func turn(ctx context.Context, asker Asker, opts ChatOptions, text string) error {
	reply, err := asker.Ask(ctx, frontdoor.Request{UserID: opts.UserID, Text: text, Channel: frontdoor.ChannelCLI})
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, frontdoor.ErrInputTooLarge), errors.Is(err, frontdoor.ErrInvalidUTF8):
		fmt.Fprintf(opts.Out, "[!] %v\n", err)
		return nil
	case err != nil:
		return err
	}

	out, rerr := opts.Render(reply.Text)
	if rerr != nil {
		out, _ = tui.Plain(reply.Text)
	}
	fmt.Fprint(opts.Out, AnswerPrefix+out)
	if reply.Status == domain.StatusPendingUserInput {
		fmt.Fprintln(opts.Out, "   (补充一下细节，学姐再帮你查)")
	}
	return nil
}

// scanLines feeds lines from r into a channel so a blocked read never pins the loop past ctx.
func scanLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		s := bufio.NewScanner(r)
		for s.Scan() {
			select {
			case ch <- s.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
