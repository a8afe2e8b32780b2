package collector

import (
	"context"
	"errors"
	"fmt"

	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

// ErrClientNotFound is returned by a Source for an unknown client code.
var ErrClientNotFound = errors.New("client not found")

// Source provides scoring input one client at a time.
type Source interface {
	ClientCodes(ctx context.Context) ([]int, error)
	LoadClient(ctx context.Context, code int) (*model.ClientRecord, error)
}

// Collector loads a client's record and builds its ledger view.
type Collector struct {
	Source Source
}

// NewCollector creates a new Collector.
func NewCollector(src Source) *Collector {
	return &Collector{Source: src}
}

// Collect loads one client and computes every ledger aggregate.
func (c *Collector) Collect(ctx context.Context, code int) (*ledger.View, error) {
	rec, err := c.Source.LoadClient(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load client %d: %w", code, err)
	}
	return ledger.New(rec), nil
}
