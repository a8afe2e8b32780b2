// Package collector reads client records from CSV exports or storage and
// turns them into ledger views.
package collector

import (
	"context"
	"sort"

	"ProductAdvisor/internal/model"
)

// Dataset is an in-memory Source.
type Dataset struct {
	records map[int]*model.ClientRecord
	codes   []int

	// Skipped counts input rows dropped while reading.
	Skipped int
}

// NewDataset indexes records by client code. Later duplicates replace earlier ones.
func NewDataset(records []model.ClientRecord) *Dataset {
	d := &Dataset{records: make(map[int]*model.ClientRecord, len(records))}
	for i := range records {
		rec := records[i]
		if _, ok := d.records[rec.Profile.ClientCode]; !ok {
			d.codes = append(d.codes, rec.Profile.ClientCode)
		}
		d.records[rec.Profile.ClientCode] = &rec
	}
	sort.Ints(d.codes)
	return d
}

// ClientCodes returns every client code in ascending order.
func (d *Dataset) ClientCodes(_ context.Context) ([]int, error) {
	out := make([]int, len(d.codes))
	copy(out, d.codes)
	return out, nil
}

// LoadClient returns a copy of the client's record.
func (d *Dataset) LoadClient(_ context.Context, code int) (*model.ClientRecord, error) {
	rec, ok := d.records[code]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := model.ClientRecord{
		Profile:      rec.Profile,
		Transactions: append([]model.Transaction(nil), rec.Transactions...),
		Transfers:    append([]model.Transfer(nil), rec.Transfers...),
	}
	return &cp, nil
}

// Records returns every record ordered by client code.
func (d *Dataset) Records() []model.ClientRecord {
	out := make([]model.ClientRecord, 0, len(d.codes))
	for _, code := range d.codes {
		out = append(out, *d.records[code])
	}
	return out
}

// Len is the number of clients.
func (d *Dataset) Len() int { return len(d.codes) }
