package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ProductAdvisor/internal/collector"
	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/pipeline"
)

// ErrNoRuns is returned by LastRun before the first recorded pass.
var ErrNoRuns = errors.New("no scoring runs recorded")

// ClientCodes returns every stored client code in ascending order.
func (s *SQLiteStore) ClientCodes(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT client_code FROM clients ORDER BY client_code`)
	if err != nil {
		return nil, fmt.Errorf("query client codes: %w", err)
	}
	defer rows.Close()

	var codes []int
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// LoadClient reads one client with its transactions and transfers in date order.
func (s *SQLiteStore) LoadClient(ctx context.Context, code int) (*model.ClientRecord, error) {
	rec := &model.ClientRecord{}
	p := &rec.Profile
	var status, city sql.NullString
	var age sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT client_code, name, status, age, city, avg_monthly_balance_kzt FROM clients WHERE client_code = ?`, code).
		Scan(&p.ClientCode, &p.Name, &status, &age, &city, &p.AvgMonthlyBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", code, collector.ErrClientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query client %d: %w", code, err)
	}
	p.Status, p.City, p.Age = status.String, city.String, int(age.Int64)

	if rec.Transactions, err = s.loadTransactions(ctx, code); err != nil {
		return nil, err
	}
	if rec.Transfers, err = s.loadTransfers(ctx, code); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) loadTransactions(ctx context.Context, code int) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(name, ''), COALESCE(product, ''), COALESCE(status, ''), COALESCE(city, ''),
		        transaction_date, category, amount, currency
		 FROM transactions WHERE client_code = ? ORDER BY transaction_date, id`, code)
	if err != nil {
		return nil, fmt.Errorf("query transactions for %d: %w", code, err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t := model.Transaction{ClientCode: code}
		var date string
		if err := rows.Scan(&t.Name, &t.Product, &t.Status, &t.City, &date, &t.Category, &t.Amount, &t.Currency); err != nil {
			return nil, err
		}
		if t.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("transaction date %q: %w", date, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadTransfers(ctx context.Context, code int) ([]model.Transfer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(name, ''), COALESCE(product, ''), COALESCE(status, ''), COALESCE(city, ''),
		        transfer_date, type, direction, amount, currency
		 FROM transfers WHERE client_code = ? ORDER BY transfer_date, id`, code)
	if err != nil {
		return nil, fmt.Errorf("query transfers for %d: %w", code, err)
	}
	defer rows.Close()

	var out []model.Transfer
	for rows.Next() {
		t := model.Transfer{ClientCode: code}
		var date, dir string
		if err := rows.Scan(&t.Name, &t.Product, &t.Status, &t.City, &date, &t.Type, &dir, &t.Amount, &t.Currency); err != nil {
			return nil, err
		}
		if t.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("transfer date %q: %w", date, err)
		}
		t.Direction = model.Direction(dir)
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecommendationTable pivots the top four recommendations of every client
// into one row per client, ordered by client code.
func (s *SQLiteStore) RecommendationTable(ctx context.Context) ([]RecommendationRow, error) {
	var cols strings.Builder
	for rank := 1; rank <= 4; rank++ {
		fmt.Fprintf(&cols, `,
			MAX(CASE WHEN r.rank = %[1]d THEN r.product_name END),
			MAX(CASE WHEN r.rank = %[1]d THEN r.potential_benefit END)`, rank)
	}
	query := `SELECT c.client_code, c.name,
			COALESCE((SELECT t.product FROM transactions t
			          WHERE t.client_code = c.client_code AND t.product IS NOT NULL AND t.product <> ''
			          ORDER BY t.transaction_date DESC, t.id DESC LIMIT 1), '')` + cols.String() + `
		FROM clients c
		LEFT JOIN client_recommendations r ON r.client_code = c.client_code
		GROUP BY c.client_code
		ORDER BY c.client_code`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query recommendation table: %w", err)
	}
	defer rows.Close()

	var out []RecommendationRow
	for rows.Next() {
		var row RecommendationRow
		var names [4]sql.NullString
		var benefits [4]sql.NullFloat64
		dest := []any{&row.ClientCode, &row.Name, &row.CurrentProduct}
		for i := range names {
			dest = append(dest, &names[i], &benefits[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i := range names {
			row.Products[i] = names[i].String
			row.Benefits[i] = benefits[i].Float64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SignalRows returns every stored signal ordered by client and detection order.
func (s *SQLiteStore) SignalRows(ctx context.Context) ([]model.Signal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_code, signal_type, COALESCE(signal_value, 0), COALESCE(signal_frequency, 0), COALESCE(signal_strength, '')
		 FROM client_signals ORDER BY client_code, id`)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []model.Signal
	for rows.Next() {
		var r model.Signal
		var strength string
		if err := rows.Scan(&r.ClientCode, &r.Type, &r.Value, &r.Frequency, &strength); err != nil {
			return nil, err
		}
		r.Strength = model.Strength(strength)
		out = append(out, r)
	}
	return out, rows.Err()
}

// BenefitRows returns every stored benefit ordered by client and value descending.
func (s *SQLiteStore) BenefitRows(ctx context.Context) ([]BenefitRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_code, product_name, potential_benefit, COALESCE(benefit_type, ''),
		        COALESCE(confidence_score, 0), COALESCE(calculation_details, '')
		 FROM product_benefits ORDER BY client_code, potential_benefit DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query benefits: %w", err)
	}
	defer rows.Close()

	var out []BenefitRow
	for rows.Next() {
		var r BenefitRow
		if err := rows.Scan(&r.ClientCode, &r.ProductName, &r.PotentialBenefit, &r.BenefitType, &r.Confidence, &r.DetailsJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopRecommendations returns the recommendations at rank for every client,
// joined with the client profile and the benefit details behind them.
func (s *SQLiteStore) TopRecommendations(ctx context.Context, rank int) ([]PushCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.client_code, c.name, COALESCE(c.status, ''), COALESCE(c.age, 0), COALESCE(c.city, ''), c.avg_monthly_balance_kzt,
		        r.rank, r.product_id, r.product_name, r.product_kind, COALESCE(r.current_product, ''),
		        r.potential_benefit, COALESCE(r.benefit_type, ''), COALESCE(r.recommendation_reason, ''),
		        COALESCE(r.confidence_score, 0), COALESCE(b.calculation_details, '')
		 FROM client_recommendations r
		 JOIN clients c ON c.client_code = r.client_code
		 LEFT JOIN product_benefits b ON b.client_code = r.client_code AND b.product_id = r.product_id
		 WHERE r.rank = ?
		 ORDER BY r.client_code`, rank)
	if err != nil {
		return nil, fmt.Errorf("query rank %d recommendations: %w", rank, err)
	}
	defer rows.Close()

	var out []PushCandidate
	for rows.Next() {
		var pc PushCandidate
		p, r := &pc.Profile, &pc.Recommendation
		var kind, details string
		if err := rows.Scan(&p.ClientCode, &p.Name, &p.Status, &p.Age, &p.City, &p.AvgMonthlyBalance,
			&r.Rank, &r.ProductID, &r.ProductName, &kind, &r.CurrentProduct,
			&r.PotentialBenefit, &r.BenefitType, &r.Reason, &r.Confidence, &details); err != nil {
			return nil, err
		}
		r.ClientCode = p.ClientCode
		r.Kind = model.ProductKind(kind)
		if details != "" {
			if err := json.Unmarshal([]byte(details), &pc.Details); err != nil {
				return nil, fmt.Errorf("decode details for %d: %w", p.ClientCode, err)
			}
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// ClientRecommendations returns one client's stored shortlist in rank order.
func (s *SQLiteStore) ClientRecommendations(ctx context.Context, code int) ([]model.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, product_id, product_name, product_kind, COALESCE(current_product, ''),
		        potential_benefit, COALESCE(benefit_type, ''), COALESCE(recommendation_reason, ''), COALESCE(confidence_score, 0)
		 FROM client_recommendations WHERE client_code = ? ORDER BY rank`, code)
	if err != nil {
		return nil, fmt.Errorf("query recommendations for %d: %w", code, err)
	}
	defer rows.Close()

	var out []model.Recommendation
	for rows.Next() {
		r := model.Recommendation{ClientCode: code}
		var kind string
		if err := rows.Scan(&r.Rank, &r.ProductID, &r.ProductName, &kind, &r.CurrentProduct,
			&r.PotentialBenefit, &r.BenefitType, &r.Reason, &r.Confidence); err != nil {
			return nil, err
		}
		r.Kind = model.ProductKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRun returns the most recently started scoring pass.
func (s *SQLiteStore) LastRun(ctx context.Context) (*pipeline.Summary, error) {
	var sum pipeline.Summary
	var started, finished int64
	var failed string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, finished_at, clients, succeeded, failed, COALESCE(failed_clients, ''), signals, benefits, recommendations
		 FROM scoring_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&sum.RunID, &started, &finished, &sum.Clients, &sum.Succeeded, &sum.Failed, &failed,
			&sum.Signals, &sum.Benefits, &sum.Recommendations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	sum.StartedAt = time.Unix(started, 0)
	sum.FinishedAt = time.Unix(finished, 0)
	if failed != "" {
		for _, f := range strings.Split(failed, ",") {
			c, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("failed client %q: %w", f, err)
			}
			sum.FailedClients = append(sum.FailedClients, c)
		}
	}
	return &sum, nil
}
