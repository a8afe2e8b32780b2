package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/collector"
	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

type memorySink struct {
	mu      sync.Mutex
	results map[int]Result
	runs    []*Summary
	failOn  map[int]bool
}

func newMemorySink(failOn ...int) *memorySink {
	s := &memorySink{results: map[int]Result{}, failOn: map[int]bool{}}
	for _, c := range failOn {
		s.failOn[c] = true
	}
	return s
}

func (s *memorySink) ReplaceClientResults(_ context.Context, res Result, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[res.ClientCode] {
		return errors.New("disk full")
	}
	s.results[res.ClientCode] = res
	return nil
}

func (s *memorySink) RecordRun(_ context.Context, sum *Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, sum)
	return nil
}

// panicSource panics when loading one specific client.
type panicSource struct {
	collector.Source
	code int
}

func (p panicSource) LoadClient(ctx context.Context, code int) (*model.ClientRecord, error) {
	if code == p.code {
		panic("corrupt record")
	}
	return p.Source.LoadClient(ctx, code)
}

func record(code int, balance float64) model.ClientRecord {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.ClientRecord{
		Profile: model.ClientProfile{ClientCode: code, AvgMonthlyBalance: balance},
		Transactions: []model.Transaction{
			{ClientCode: code, Date: d, Category: ledger.CategoryTravel, Amount: 60000, Currency: "KZT", Product: catalog.NameTravelCard},
			{ClientCode: code, Date: d.AddDate(0, 1, 0), Category: ledger.CategoryRestaurants, Amount: 40000, Currency: "KZT"},
			{ClientCode: code, Date: d.AddDate(0, 2, 0), Category: ledger.CategoryCinema, Amount: 5000, Currency: "KZT"},
		},
		Transfers: []model.Transfer{
			{ClientCode: code, Date: d, Type: ledger.TransferFXBuy, Direction: model.DirectionOut, Amount: 30000, Currency: "KZT"},
		},
	}
}

func dataset(n int) *collector.Dataset {
	recs := make([]model.ClientRecord, 0, n)
	for i := 1; i <= n; i++ {
		recs = append(recs, record(i, float64(i)*500000))
	}
	return collector.NewDataset(recs)
}

func TestScore_ExcludesCurrentProduct(t *testing.T) {
	rec := record(1, 3000000)
	res := Score(ledger.New(&rec), catalog.Default())

	assert.Equal(t, catalog.NameTravelCard, res.CurrentProduct)
	assert.NotEmpty(t, res.Signals)
	assert.NotEmpty(t, res.Benefits)
	require.Len(t, res.Recommendations, 4)
	for _, r := range res.Recommendations {
		assert.NotEqual(t, catalog.NameTravelCard, r.ProductName)
	}
}

func TestScore_Idempotent(t *testing.T) {
	rec := record(1, 3000000)
	first, err := json.Marshal(Score(ledger.New(&rec), catalog.Default()))
	require.NoError(t, err)
	second, err := json.Marshal(Score(ledger.New(&rec), catalog.Default()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRunner_Run(t *testing.T) {
	sink := newMemorySink()
	r := NewRunner(dataset(10), catalog.Default(), sink, 3, zerolog.Nop())

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 10, sum.Clients)
	assert.Equal(t, 10, sum.Succeeded)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, 40, sum.Recommendations)
	assert.False(t, sum.FinishedAt.Before(sum.StartedAt))
	assert.Len(t, sink.results, 10)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, sum.RunID, sink.runs[0].RunID)
}

func TestRunner_IsolatesFailures(t *testing.T) {
	sink := newMemorySink(4)
	src := panicSource{Source: dataset(6), code: 2}
	r := NewRunner(src, catalog.Default(), sink, 2, zerolog.Nop())

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Succeeded)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, []int{2, 4}, sum.FailedClients)
	for _, code := range []int{1, 3, 5, 6} {
		assert.Contains(t, sink.results, code)
	}
	assert.NotContains(t, sink.results, 2)
	assert.NotContains(t, sink.results, 4)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := newMemorySink()
	sum, err := NewRunner(dataset(3), catalog.Default(), sink, 1, zerolog.Nop()).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)
	assert.Zero(t, sum.Succeeded)
	assert.Len(t, sink.runs, 1)
}

func TestRunner_RunOne(t *testing.T) {
	sink := newMemorySink()
	r := NewRunner(dataset(2), catalog.Default(), sink, 1, zerolog.Nop())

	res, err := r.RunOne(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ClientCode)
	assert.Contains(t, sink.results, 2)

	_, err = r.RunOne(context.Background(), 99)
	assert.ErrorIs(t, err, collector.ErrClientNotFound)
}
