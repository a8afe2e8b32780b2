package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ProductAdvisor/internal/model"
)

// Dataset file names.
const (
	ClientsFile         = "clients.csv"
	TransactionsPattern = "client_*_transactions_3m.csv"
	TransfersPattern    = "client_*_transfers_3m.csv"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReadDataset reads clients.csv plus every per-client transaction and transfer
// export in dir. Rows that fail to parse, or that reference an unknown client,
// are skipped and counted. A missing clients.csv is an error.
func ReadDataset(dir string, log zerolog.Logger) (*Dataset, error) {
	log = log.With().Str("component", "dataset").Str("dir", dir).Logger()

	byCode := make(map[int]*model.ClientRecord)
	skipped := 0

	err := readCSV(filepath.Join(dir, ClientsFile), func(row csvRow) error {
		p, err := parseClient(row)
		if err != nil {
			return err
		}
		byCode[p.ClientCode] = &model.ClientRecord{Profile: p}
		return nil
	}, &skipped, log)
	if err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}

	txFiles, err := filepath.Glob(filepath.Join(dir, TransactionsPattern))
	if err != nil {
		return nil, fmt.Errorf("glob transactions: %w", err)
	}
	sort.Strings(txFiles)
	for _, f := range txFiles {
		err := readCSV(f, func(row csvRow) error {
			t, err := parseTransaction(row)
			if err != nil {
				return err
			}
			rec, ok := byCode[t.ClientCode]
			if !ok {
				return fmt.Errorf("%w: %d", ErrClientNotFound, t.ClientCode)
			}
			rec.Transactions = append(rec.Transactions, t)
			return nil
		}, &skipped, log)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
	}

	trFiles, err := filepath.Glob(filepath.Join(dir, TransfersPattern))
	if err != nil {
		return nil, fmt.Errorf("glob transfers: %w", err)
	}
	sort.Strings(trFiles)
	for _, f := range trFiles {
		err := readCSV(f, func(row csvRow) error {
			t, err := parseTransfer(row)
			if err != nil {
				return err
			}
			rec, ok := byCode[t.ClientCode]
			if !ok {
				return fmt.Errorf("%w: %d", ErrClientNotFound, t.ClientCode)
			}
			rec.Transfers = append(rec.Transfers, t)
			return nil
		}, &skipped, log)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
	}

	records := make([]model.ClientRecord, 0, len(byCode))
	for _, rec := range byCode {
		sort.SliceStable(rec.Transactions, func(i, j int) bool {
			return rec.Transactions[i].Date.Before(rec.Transactions[j].Date)
		})
		sort.SliceStable(rec.Transfers, func(i, j int) bool {
			return rec.Transfers[i].Date.Before(rec.Transfers[j].Date)
		})
		records = append(records, *rec)
	}

	ds := NewDataset(records)
	ds.Skipped = skipped
	log.Info().
		Int("clients", ds.Len()).
		Int("transaction_files", len(txFiles)).
		Int("transfer_files", len(trFiles)).
		Int("skipped_rows", skipped).
		Msg("dataset loaded")
	return ds, nil
}

// csvRow gives header-keyed access to one record.
type csvRow struct {
	header map[string]int
	fields []string
}

func (r csvRow) get(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r csvRow) require(col string) (string, error) {
	v := r.get(col)
	if v == "" {
		return "", fmt.Errorf("missing %s", col)
	}
	return v, nil
}

func readCSV(path string, handle func(csvRow) error, skipped *int, log zerolog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(head))
	for i, h := range head {
		header[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	line := 1
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			*skipped++
			log.Warn().Err(err).Str("file", filepath.Base(path)).Int("line", line).Msg("skip malformed row")
			continue
		}
		if err := handle(csvRow{header: header, fields: fields}); err != nil {
			*skipped++
			log.Warn().Err(err).Str("file", filepath.Base(path)).Int("line", line).Msg("skip row")
		}
	}
}

func parseClient(row csvRow) (model.ClientProfile, error) {
	code, err := parseInt(row, "client_code")
	if err != nil {
		return model.ClientProfile{}, err
	}
	age, err := parseInt(row, "age")
	if err != nil {
		return model.ClientProfile{}, err
	}
	balance, err := parseAmount(row, "avg_monthly_balance_KZT")
	if err != nil {
		return model.ClientProfile{}, err
	}
	return model.ClientProfile{
		ClientCode:        code,
		Name:              row.get("name"),
		Status:            row.get("status"),
		Age:               age,
		City:              row.get("city"),
		AvgMonthlyBalance: balance,
	}, nil
}

func parseTransaction(row csvRow) (model.Transaction, error) {
	code, err := parseInt(row, "client_code")
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := parseDate(row)
	if err != nil {
		return model.Transaction{}, err
	}
	category, err := row.require("category")
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := parseAmount(row, "amount")
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ClientCode: code,
		Name:       row.get("name"),
		Product:    row.get("product"),
		Status:     row.get("status"),
		City:       row.get("city"),
		Date:       date,
		Category:   category,
		Amount:     amount,
		Currency:   currency(row),
	}, nil
}

func parseTransfer(row csvRow) (model.Transfer, error) {
	code, err := parseInt(row, "client_code")
	if err != nil {
		return model.Transfer{}, err
	}
	date, err := parseDate(row)
	if err != nil {
		return model.Transfer{}, err
	}
	typ, err := row.require("type")
	if err != nil {
		return model.Transfer{}, err
	}
	dir := model.Direction(strings.ToLower(row.get("direction")))
	if dir != model.DirectionIn && dir != model.DirectionOut {
		return model.Transfer{}, fmt.Errorf("bad direction %q", dir)
	}
	amount, err := parseAmount(row, "amount")
	if err != nil {
		return model.Transfer{}, err
	}
	return model.Transfer{
		ClientCode: code,
		Name:       row.get("name"),
		Product:    row.get("product"),
		Status:     row.get("status"),
		City:       row.get("city"),
		Date:       date,
		Type:       typ,
		Direction:  dir,
		Amount:     amount,
		Currency:   currency(row),
	}, nil
}

func parseInt(row csvRow, col string) (int, error) {
	v, err := row.require(col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// exports sometimes write integer columns as 12.0
		d, derr := decimal.NewFromString(v)
		if derr != nil || !d.IsInteger() {
			return 0, fmt.Errorf("parse %s: %w", col, err)
		}
		return int(d.IntPart()), nil
	}
	return n, nil
}

func parseAmount(row csvRow, col string) (float64, error) {
	v, err := row.require(col)
	if err != nil {
		return 0, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, " ", ""))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", col, err)
	}
	return d.InexactFloat64(), nil
}

func parseDate(row csvRow) (time.Time, error) {
	v, err := row.require("date")
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", v)
}

func currency(row csvRow) string {
	if c := strings.ToUpper(row.get("currency")); c != "" {
		return c
	}
	return model.BaseCurrency
}
