// Package report writes the recommendation CSVs and summary statistics.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/storage"
)

// Output file names.
const (
	AnalysisFile = "client_benefits_analysis.csv"
	SignalsFile  = "client_signals_debug.csv"
	BenefitsFile = "product_benefits_debug.csv"
)

// Placeholders for empty cells.
const (
	NotCalculated = "Не рассчитано"
	NoData        = "Нет данных"
	ZeroBenefit   = "0 ₸"
)

// Store is the read side of the result database.
type Store interface {
	RecommendationTable(ctx context.Context) ([]storage.RecommendationRow, error)
	SignalRows(ctx context.Context) ([]model.Signal, error)
	BenefitRows(ctx context.Context) ([]storage.BenefitRow, error)
}

// Generator writes report files into one output directory.
type Generator struct {
	store Store
	dir   string
	log   zerolog.Logger
}

// NewGenerator creates a Generator writing into dir.
func NewGenerator(store Store, dir string, log zerolog.Logger) *Generator {
	return &Generator{store: store, dir: dir, log: log.With().Str("component", "report").Logger()}
}

// Generate writes every report file and returns the summary statistics.
func (g *Generator) Generate(ctx context.Context) (*Summary, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	table, err := g.store.RecommendationTable(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.writeAnalysis(table); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(table))
	for _, row := range table {
		names[row.ClientCode] = row.Name
	}
	if err := g.writeSignals(ctx, names); err != nil {
		return nil, err
	}
	if err := g.writeBenefits(ctx, names); err != nil {
		return nil, err
	}

	sum := Summarize(table)
	g.log.Info().
		Str("dir", g.dir).
		Int("clients", sum.TotalClients).
		Int("with_recommendations", sum.ClientsWithRecommendations).
		Msg("reports written")
	return sum, nil
}

func (g *Generator) writeAnalysis(table []storage.RecommendationRow) error {
	header := []string{"client_code", "name", "current_product"}
	for i := 1; i <= 4; i++ {
		header = append(header, fmt.Sprintf("top%d_product", i), fmt.Sprintf("top%d_benefit", i))
	}

	records := [][]string{header}
	for _, row := range table {
		records = append(records, AnalysisRecord(row))
	}
	return g.write(AnalysisFile, records)
}

// AnalysisRecord renders one row of the analysis CSV.
func AnalysisRecord(row storage.RecommendationRow) []string {
	current := row.CurrentProduct
	if current == "" {
		current = NoData
	}
	rec := []string{strconv.Itoa(row.ClientCode), row.Name, current}
	for i := range row.Products {
		if row.Products[i] == "" {
			rec = append(rec, NotCalculated, ZeroBenefit)
			continue
		}
		rec = append(rec, row.Products[i], Money(row.Benefits[i]))
	}
	return rec
}

func (g *Generator) writeSignals(ctx context.Context, names map[int]string) error {
	rows, err := g.store.SignalRows(ctx)
	if err != nil {
		return err
	}
	records := [][]string{{"client_code", "name", "signal_type", "signal_value", "signal_frequency", "signal_strength"}}
	for _, s := range rows {
		records = append(records, []string{
			strconv.Itoa(s.ClientCode),
			names[s.ClientCode],
			s.Type,
			humanize.FormatFloat("#,###.##", s.Value),
			strconv.Itoa(s.Frequency),
			string(s.Strength),
		})
	}
	return g.write(SignalsFile, records)
}

func (g *Generator) writeBenefits(ctx context.Context, names map[int]string) error {
	rows, err := g.store.BenefitRows(ctx)
	if err != nil {
		return err
	}
	records := [][]string{{"client_code", "name", "product_name", "potential_benefit", "benefit_type", "confidence_score", "calculation_details"}}
	for _, b := range rows {
		records = append(records, []string{
			strconv.Itoa(b.ClientCode),
			names[b.ClientCode],
			b.ProductName,
			humanize.FormatFloat("#,###.##", b.PotentialBenefit) + " ₸",
			b.BenefitType,
			strconv.FormatFloat(b.Confidence, 'f', 2, 64),
			b.DetailsJSON,
		})
	}
	return g.write(BenefitsFile, records)
}

func (g *Generator) write(name string, records [][]string) error {
	path := filepath.Join(g.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// Money formats a benefit as "1,234 ₸", rounding half to even.
func Money(x float64) string {
	return humanize.Comma(int64(math.RoundToEven(x))) + " ₸"
}
