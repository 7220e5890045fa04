// Package shell implements the interactive "bf >" prompt.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bruteforce-framework/bruteforce/internal/config"
	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
	"github.com/bruteforce-framework/bruteforce/internal/pkg/metrics"
	"github.com/bruteforce-framework/bruteforce/internal/port"
)

var setLabels = map[string]string{
	"mode":      "Mode",
	"charset":   "Charset",
	"min":       "Min length",
	"max":       "Max length",
	"threads":   "Threads",
	"target":    "Target hash",
	"wordlist":  "Wordlist",
	"algorithm": "Algorithm",
	"encoding":  "Encoding",
	"queue":     "Queue capacity",
	"output":    "Output",
}

// Shell reads commands, edits its Settings and runs searches. An interrupt
// cancels the running search; at the prompt it only prints a hint.
type Shell struct {
	search     port.SearchService
	settings   *config.Settings
	printer    *Printer
	interrupts <-chan os.Signal
	logger     zerolog.Logger
}

type Option func(*Shell)

// WithInterrupts delivers Ctrl-C to the shell.
func WithInterrupts(ch <-chan os.Signal) Option {
	return func(s *Shell) {
		s.interrupts = ch
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

func New(search port.SearchService, settings *config.Settings, printer *Printer, opts ...Option) *Shell {
	s := &Shell{
		search:   search,
		settings: settings,
		printer:  printer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "shell").Logger()
	return s
}

// Run serves commands from in until "exit", end of input or ctx ends.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.printer.Banner()
	s.printer.Successf("Interactive mode activated")
	s.printer.Println("Type 'help' for available commands")
	s.printer.Println()

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		s.printer.Prompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.interrupts:
			s.printer.Println("\nUse 'exit' to quit")
		case line, ok := <-lines:
			if !ok {
				s.printer.Println()
				return nil
			}
			if s.Execute(ctx, line) {
				return nil
			}
		}
	}
}

// Execute runs one command line and reports whether the shell should exit.
// A failing command never ends the shell.
func (s *Shell) Execute(ctx context.Context, line string) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("command", line).Msg("command failed")
			s.printer.Errorf("Error: %v", r)
			exit = false
		}
	}()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		s.help()
	case "set":
		if len(fields) < 3 {
			s.printer.Errorf("Usage: set <option> <value>")
			return false
		}
		s.set(fields[1], strings.Join(fields[2:], " "))
	case "show":
		if len(fields) == 2 && strings.EqualFold(fields[1], "options") {
			s.printer.Options(s.settings.Describe())
			return false
		}
		s.printer.Errorf("Unknown command")
	case "run":
		s.run(ctx)
	case "exit", "quit":
		s.printer.Println("Goodbye!")
		return true
	default:
		s.printer.Errorf("Unknown command")
	}
	return false
}

func (s *Shell) help() {
	s.printer.Println("\nAvailable commands:")
	s.printer.Println("  set <option> <value>  - Configure attack parameters")
	s.printer.Println("  run                   - Start the attack")
	s.printer.Println("  show options          - Show current configuration")
	s.printer.Println("  exit                  - Quit the program")
	s.printer.Println("\nOptions: mode, charset, min, max, threads, target, wordlist, algorithm, encoding, queue, output")
	s.printer.Println()
}

func (s *Shell) set(option, value string) {
	if err := s.settings.Set(option, value); err != nil {
		s.printer.Error(err)
		return
	}
	s.printer.Println(fmt.Sprintf("%s set to %s", setLabels[strings.ToLower(option)], value))
}

func (s *Shell) run(ctx context.Context) {
	cfg, err := s.settings.SearchConfig()
	if err != nil {
		s.printer.Error(err)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.interrupts:
			cancel()
		case <-runCtx.Done():
		}
	}()

	s.printer.Infof("\n[*] Starting attack...")
	res, err := s.search.Run(runCtx, cfg)
	if err != nil {
		s.printer.Error(err)
		return
	}
	s.printer.Result(res)
	s.report(res)
}

// report appends res to the output file, if one is set.
func (s *Shell) report(res *domain.SearchResult) {
	if s.settings.Output == "" {
		return
	}
	reporter, err := metrics.NewReporter(s.settings.Output)
	if err != nil {
		s.printer.Error(err)
		return
	}
	reporter.Record("search", res)
	if err := reporter.Close(); err != nil {
		s.logger.Warn().Err(err).Str("path", s.settings.Output).Msg("failed to write report")
		s.printer.Error(err)
	}
}
