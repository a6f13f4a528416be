// Package shell is the line-oriented console that drives a ShopBot session.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

const (
	DefaultAssistantName = "ShopBot"
	DefaultFarewell      = "Thanks for shopping with us. Goodbye!"
	userPrompt           = "You: "
)

// Runner resolves one user turn already appended to the transcript.
type Runner interface {
	RunTurn(ctx context.Context, t *model.Transcript) (*schema.Message, error)
}

// Indicator is shown while a turn is in flight.
type Indicator interface {
	Start()
	Stop()
}

type Options struct {
	In            io.Reader
	Out           io.Writer
	ExitKeywords  []string
	Indicator     Indicator
	AssistantName string
	Farewell      string
}

type Shell struct {
	runner       Runner
	transcript   *model.Transcript
	in           io.Reader
	out          io.Writer
	exitKeywords []string
	indicator    Indicator
	name         string
	farewell     string
}

func New(runner Runner, t *model.Transcript, opts Options) *Shell {
	s := &Shell{
		runner:     runner,
		transcript: t,
		in:         opts.In,
		out:        opts.Out,
		indicator:  opts.Indicator,
		name:       opts.AssistantName,
		farewell:   opts.Farewell,
		exitKeywords: lo.FilterMap(opts.ExitKeywords, func(k string, _ int) (string, bool) {
			k = strings.ToLower(strings.TrimSpace(k))
			return k, k != ""
		}),
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.name == "" {
		s.name = DefaultAssistantName
	}
	if s.farewell == "" {
		s.farewell = DefaultFarewell
	}
	return s
}

// Run reads lines until EOF, a blank line, an exit keyword or ctx cancellation.
// Turn failures are reported to the user and the loop continues; only input
// read errors are returned.
func (s *Shell) Run(ctx context.Context) error {
	// stops the reader when Run returns before input is exhausted
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := s.readLines(ctx)

	if len(s.exitKeywords) > 0 {
		s.printf("Welcome to %s! Type %q to leave.\n\n", s.name, s.exitKeywords[0])
	} else {
		s.printf("Welcome to %s!\n\n", s.name)
	}

	for {
		s.printf(userPrompt)

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			s.printf("\n")
			s.sayGoodbye()
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			s.printf("\n")
			s.sayGoodbye()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" || s.isExit(line) {
			s.sayGoodbye()
			return nil
		}

		s.transcript.Append(schema.UserMessage(line))
		reply, err := s.runTurn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.printf("\n")
				s.sayGoodbye()
				return nil
			}
			logx.Error().Err(err).Str("session_id", s.transcript.ID()).Msg("Turn failed")
			s.printf("%s: %s\n\n", s.name, errx.UserMessage(err))
			continue
		}
		s.printf("%s: %s\n\n", s.name, reply.Content)
	}
}

func (s *Shell) runTurn(ctx context.Context) (*schema.Message, error) {
	if s.indicator != nil {
		s.indicator.Start()
		defer s.indicator.Stop()
	}
	return s.runner.RunTurn(ctx, s.transcript)
}

// readLines scans input on its own goroutine so a blocked read never delays
// cancellation. readErr receives exactly one value once lines is closed.
func (s *Shell) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scan := bufio.NewScanner(s.in)
		for scan.Scan() {
			select {
			case lines <- scan.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scan.Err()
	}()
	return lines, readErr
}

func (s *Shell) isExit(line string) bool {
	return lo.Contains(s.exitKeywords, strings.ToLower(line))
}

func (s *Shell) sayGoodbye() {
	s.printf("%s: %s\n", s.name, s.farewell)
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
