package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/pipeline"
)

// derivedTables are cleared before a fresh import.
var derivedTables = []string{
	"client_recommendations",
	"product_benefits",
	"client_signals",
	"transfers",
	"transactions",
	"clients",
}

// ImportDataset replaces all client data with records in one transaction.
// Previous scoring output is dropped with it.
func (s *SQLiteStore) ImportDataset(ctx context.Context, records []model.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txCount, trCount int
	err := WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range derivedTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		clientStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO clients (client_code, name, status, age, city, avg_monthly_balance_kzt)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer clientStmt.Close()

		txStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (client_code, name, product, status, city, transaction_date, category, amount, currency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer txStmt.Close()

		trStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transfers (client_code, name, product, status, city, transfer_date, type, direction, amount, currency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer trStmt.Close()

		for _, rec := range records {
			p := rec.Profile
			if _, err := clientStmt.ExecContext(ctx, p.ClientCode, p.Name, p.Status, p.Age, p.City, p.AvgMonthlyBalance); err != nil {
				return fmt.Errorf("insert client %d: %w", p.ClientCode, err)
			}
			for _, t := range rec.Transactions {
				if _, err := txStmt.ExecContext(ctx, p.ClientCode, t.Name, t.Product, t.Status, t.City,
					t.Date.Format(dateLayout), t.Category, t.Amount, t.Currency); err != nil {
					return fmt.Errorf("insert transaction for %d: %w", p.ClientCode, err)
				}
				txCount++
			}
			for _, t := range rec.Transfers {
				if _, err := trStmt.ExecContext(ctx, p.ClientCode, t.Name, t.Product, t.Status, t.City,
					t.Date.Format(dateLayout), t.Type, string(t.Direction), t.Amount, t.Currency); err != nil {
					return fmt.Errorf("insert transfer for %d: %w", p.ClientCode, err)
				}
				trCount++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}

	s.log.Info().
		Int("clients", len(records)).
		Int("transactions", txCount).
		Int("transfers", trCount).
		Msg("dataset imported")
	return nil
}

// SyncProducts upserts the catalog into the products table. Rows whose id is
// missing from products are marked inactive; they stay for foreign keys.
func (s *SQLiteStore) SyncProducts(ctx context.Context, products []model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, p := range products {
			var limit any
			if p.MonthlyLimit != nil {
				limit = *p.MonthlyLimit
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO products (id, name, product_kind, base_rate, cashback_rate, monthly_limit, is_active)
				 VALUES (?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					product_kind = excluded.product_kind,
					base_rate = excluded.base_rate,
					cashback_rate = excluded.cashback_rate,
					monthly_limit = excluded.monthly_limit,
					is_active = excluded.is_active`,
				p.ID, p.Name, string(p.Kind), p.BaseRate, p.CashbackRate, limit, boolToInt(p.Active))
			if err != nil {
				return fmt.Errorf("upsert product %d: %w", p.ID, err)
			}
		}

		query := `UPDATE products SET is_active = 0`
		args := make([]any, 0, len(products))
		if len(products) > 0 {
			query += ` WHERE id NOT IN (?` + strings.Repeat(", ?", len(products)-1) + `)`
			for _, p := range products {
				args = append(args, p.ID)
			}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("deactivate products: %w", err)
		}
		return nil
	})
}

// ReplaceClientResults swaps a client's signals, benefits and recommendations
// in one transaction. Empty slices still clear the previous rows.
func (s *SQLiteStore) ReplaceClientResults(ctx context.Context, res pipeline.Result, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	code := res.ClientCode
	return WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"client_signals", "product_benefits", "client_recommendations"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE client_code = ?", code); err != nil {
				return fmt.Errorf("clear %s for %d: %w", table, code, err)
			}
		}

		for _, sig := range res.Signals {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO client_signals (client_code, run_id, signal_type, signal_value, signal_frequency, signal_strength, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				code, runID, sig.Type, sig.Value, sig.Frequency, string(sig.Strength), now)
			if err != nil {
				return fmt.Errorf("insert signal %s: %w", sig.Type, err)
			}
		}

		for _, b := range res.Benefits {
			details, err := json.Marshal(b.Details)
			if err != nil {
				return fmt.Errorf("encode details for %s: %w", b.ProductName, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO product_benefits (client_code, run_id, product_id, product_name, product_kind, potential_benefit, benefit_type, calculation_details, confidence_score, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				code, runID, b.ProductID, b.ProductName, string(b.Kind), b.PotentialBenefit, b.BenefitType, string(details), b.Confidence, now)
			if err != nil {
				return fmt.Errorf("insert benefit %s: %w", b.ProductName, err)
			}
		}

		for _, r := range res.Recommendations {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO client_recommendations (client_code, run_id, rank, product_id, product_name, product_kind, current_product, potential_benefit, benefit_type, recommendation_reason, confidence_score, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				code, runID, r.Rank, r.ProductID, r.ProductName, string(r.Kind), res.CurrentProduct, r.PotentialBenefit, r.BenefitType, r.Reason, r.Confidence, now)
			if err != nil {
				return fmt.Errorf("insert recommendation rank %d: %w", r.Rank, err)
			}
		}
		return nil
	})
}

// RecordRun stores the summary of a batch pass.
func (s *SQLiteStore) RecordRun(ctx context.Context, sum *pipeline.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failed := make([]string, len(sum.FailedClients))
	for i, c := range sum.FailedClients {
		failed[i] = strconv.Itoa(c)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scoring_runs (run_id, started_at, finished_at, clients, succeeded, failed, failed_clients, signals, benefits, recommendations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.StartedAt.Unix(), sum.FinishedAt.Unix(), sum.Clients, sum.Succeeded, sum.Failed,
		strings.Join(failed, ","), sum.Signals, sum.Benefits, sum.Recommendations)
	if err != nil {
		return fmt.Errorf("insert scoring run: %w", err)
	}
	return nil
}

// SetPushNotification stores the push text of one ranked recommendation.
func (s *SQLiteStore) SetPushNotification(ctx context.Context, clientCode, rank int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE client_recommendations SET push_notification = ? WHERE client_code = ? AND rank = ?`,
		text, clientCode, rank)
	if err != nil {
		return fmt.Errorf("update push for %d: %w", clientCode, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no recommendation for client %d rank %d", clientCode, rank)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
