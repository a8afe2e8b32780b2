// Package scheduler runs scoring passes on a cron schedule and answers
// operator commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/notifier"
	"ProductAdvisor/internal/pipeline"
	"ProductAdvisor/internal/report"
	"ProductAdvisor/internal/storage"
)

// ErrBusy is returned when a pass is requested while another one runs.
var ErrBusy = errors.New("scoring pass already running")

const sendRetries = 3

// Runner scores every client once.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// Reporter writes the CSV reports after a pass.
type Reporter interface {
	Generate(ctx context.Context) (*report.Summary, error)
}

// Pusher generates push texts for the top recommendations.
type Pusher interface {
	Run(ctx context.Context) (int, error)
}

// Sender delivers operator messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Store answers the status and client commands.
type Store interface {
	LastRun(ctx context.Context) (*pipeline.Summary, error)
	ClientRecommendations(ctx context.Context, code int) ([]model.Recommendation, error)
}

// Deps wires a Scheduler. Reporter, Pusher and Sender are optional.
type Deps struct {
	Runner   Runner
	Reporter Reporter
	Pusher   Pusher
	Sender   Sender
	Store    Store
}

// Scheduler manages the cron-driven scoring pass.
type Scheduler struct {
	cron    *cron.Cron
	deps    Deps
	ctx     context.Context
	log     zerolog.Logger
	running atomic.Bool
}

// NewScheduler creates a Scheduler. ctx bounds every scheduled pass.
func NewScheduler(ctx context.Context, deps Deps, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		deps: deps,
		ctx:  ctx,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Register schedules the scoring pass with a seconds-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.scheduledPass); err != nil {
		return fmt.Errorf("register scoring pass: %w", err)
	}
	s.log.Info().Str("cron", spec).Msg("scoring pass registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scheduledPass() {
	if _, err := s.ScoreNow(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled pass")
	}
}

// ScoreNow runs one full pass: score every client, write reports, generate
// push texts and send the summary. Only one pass runs at a time.
func (s *Scheduler) ScoreNow(ctx context.Context) (*pipeline.Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.running.Store(false)

	s.log.Info().Msg("running scoring pass")
	sum, err := s.deps.Runner.Run(ctx)
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ Расчёт не завершён: %v", err))
		return sum, err
	}

	var rep *report.Summary
	if s.deps.Reporter != nil {
		if rep, err = s.deps.Reporter.Generate(ctx); err != nil {
			s.log.Error().Err(err).Msg("generate reports")
		}
	}
	if s.deps.Pusher != nil {
		if _, err := s.deps.Pusher.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("generate push notifications")
		}
	}

	s.trySend(ctx, notifier.FormatRunSummary(sum, rep))
	return sum, nil
}

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}

	switch fields[0] {
	case "/run":
		// the summary or the failure goes out through the sender
		if _, err := s.ScoreNow(ctx); errors.Is(err, ErrBusy) {
			return "⏳ Расчёт уже выполняется"
		}
		return ""
	case "/status":
		sum, err := s.deps.Store.LastRun(ctx)
		if errors.Is(err, storage.ErrNoRuns) {
			return "Расчётов ещё не было"
		}
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRunSummary(sum, nil)
	case "/client":
		if len(fields) < 2 {
			return "Использование: /client <код>"
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Sprintf("Неверный код клиента: %q", fields[1])
		}
		recs, err := s.deps.Store.ClientRecommendations(ctx, code)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatShortlist(code, recs)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.deps.Sender == nil {
		return
	}
	if err := s.deps.Sender.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
