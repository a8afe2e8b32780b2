package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/pipeline"
	"ProductAdvisor/internal/report"
	"ProductAdvisor/internal/storage"
)

type fakeRunner struct {
	err     error
	started chan struct{}
	release chan struct{}
	calls   int
}

func (f *fakeRunner) Run(context.Context) (*pipeline.Summary, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Summary{RunID: "r1", Clients: 2, Succeeded: 2}, nil
}

type fakeReporter struct{ calls int }

func (f *fakeReporter) Generate(context.Context) (*report.Summary, error) {
	f.calls++
	return &report.Summary{TopProducts: []report.ProductCount{{Name: "Инвестиции", Count: 2}}}, nil
}

type fakePusher struct{ calls int }

func (f *fakePusher) Run(context.Context) (int, error) {
	f.calls++
	return 2, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeStore struct {
	last *pipeline.Summary
	recs map[int][]model.Recommendation
}

func (f *fakeStore) LastRun(context.Context) (*pipeline.Summary, error) {
	if f.last == nil {
		return nil, storage.ErrNoRuns
	}
	return f.last, nil
}

func (f *fakeStore) ClientRecommendations(_ context.Context, code int) ([]model.Recommendation, error) {
	return f.recs[code], nil
}

func TestScoreNow_FullPass(t *testing.T) {
	runner, rep, push, sender := &fakeRunner{}, &fakeReporter{}, &fakePusher{}, &fakeSender{}
	s := NewScheduler(context.Background(), Deps{Runner: runner, Reporter: rep, Pusher: push, Sender: sender}, zerolog.Nop())

	sum, err := s.ScoreNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r1", sum.RunID)
	assert.Equal(t, 1, rep.calls)
	assert.Equal(t, 1, push.calls)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "1. Инвестиции (2)")
}

func TestScoreNow_RunnerFailure(t *testing.T) {
	runner, rep, sender := &fakeRunner{err: errors.New("db locked")}, &fakeReporter{}, &fakeSender{}
	s := NewScheduler(context.Background(), Deps{Runner: runner, Reporter: rep, Sender: sender}, zerolog.Nop())

	_, err := s.ScoreNow(context.Background())
	require.Error(t, err)
	assert.Zero(t, rep.calls)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "db locked")
}

func TestScoreNow_NoSender(t *testing.T) {
	s := NewScheduler(context.Background(), Deps{Runner: &fakeRunner{}}, zerolog.Nop())
	_, err := s.ScoreNow(context.Background())
	assert.NoError(t, err)
}

func TestScoreNow_Busy(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(context.Background(), Deps{Runner: runner}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := s.ScoreNow(context.Background())
		done <- err
	}()
	<-runner.started

	_, err := s.ScoreNow(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, "⏳ Расчёт уже выполняется", s.HandleCommand(context.Background(), "/run"))

	close(runner.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pass did not finish")
	}
}

func TestHandleCommand(t *testing.T) {
	store := &fakeStore{recs: map[int][]model.Recommendation{
		7: {{Rank: 1, ProductName: "Золотые слитки", PotentialBenefit: 10000}},
	}}
	s := NewScheduler(context.Background(), Deps{Runner: &fakeRunner{}, Store: store}, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, "Расчётов ещё не было", s.HandleCommand(ctx, "/status"))
	store.last = &pipeline.Summary{RunID: "abc", Clients: 60}
	assert.Contains(t, s.HandleCommand(ctx, "/status"), "Клиентов: 60")

	assert.Contains(t, s.HandleCommand(ctx, "/client 7"), "1. Золотые слитки: 10,000 ₸")
	assert.Equal(t, "Клиент 8: рекомендаций нет", s.HandleCommand(ctx, "/client 8"))
	assert.Contains(t, s.HandleCommand(ctx, "/client x"), "Неверный код")
	assert.Contains(t, s.HandleCommand(ctx, "/client"), "Использование")

	assert.Empty(t, s.HandleCommand(ctx, "/run"))
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/run")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/status")
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), Deps{Runner: &fakeRunner{}}, zerolog.Nop())
	assert.NoError(t, s.Register("0 0 3 * * *"))
	assert.Error(t, s.Register("not a cron"))
	s.Start()
	s.Stop()
}
