// Package export renders full entity snapshots as a JSON document and as
// per-entity CSV documents. Both forms derive from the same snapshot and agree
// on every shared field value.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// Summary carries the entity counts of a snapshot.
type Summary struct {
	TotalCategories   int `json:"total_categories"`
	TotalTransactions int `json:"total_transactions"`
	TotalGoals        int `json:"total_goals"`
	TotalAlerts       int `json:"total_alerts"`
}

// Data carries the full entity sequences of a snapshot.
type Data struct {
	Categories   []core.Category    `json:"categories"`
	Transactions []core.Transaction `json:"transactions"`
	Goals        []core.Goal        `json:"goals"`
	Alerts       []core.Alert       `json:"alerts"`
}

// Export is the complete snapshot document. Users keep the JSON form as a
// backup file, so its shape must stay stable.
type Export struct {
	Summary Summary `json:"summary"`
	Data    Data    `json:"data"`
}

// CSVDocuments holds the per-entity CSV renderings of a snapshot.
type CSVDocuments struct {
	Transactions []byte
	Categories   []byte
	Goals        []byte
}

// Fixed CSV column orders. Changing these breaks files users already saved.
var (
	transactionColumns = []string{"id", "description", "amount", "type", "category_id", "date", "created_at"}
	categoryColumns    = []string{"id", "name", "type", "limit_enabled", "monthly_limit", "color", "created_at"}
	goalColumns        = []string{"id", "title", "description", "target_amount", "current_amount", "target_date", "created_at"}
)

// Snapshot assembles an Export from the full entity sets. Nil slices are
// normalized so empty collections serialize as [] rather than null.
func Snapshot(categories []core.Category, transactions []core.Transaction, goals []core.Goal, alerts []core.Alert) Export {
	if categories == nil {
		categories = []core.Category{}
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	return Export{
		Summary: Summary{
			TotalCategories:   len(categories),
			TotalTransactions: len(transactions),
			TotalGoals:        len(goals),
			TotalAlerts:       len(alerts),
		},
		Data: Data{
			Categories:   categories,
			Transactions: transactions,
			Goals:        goals,
			Alerts:       alerts,
		},
	}
}

// JSON renders the snapshot as an indented JSON document.
func (e Export) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return out, nil
}

// DecodeJSON parses a JSON export document back into a snapshot.
func DecodeJSON(data []byte) (Export, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return Export{}, fmt.Errorf("decoding export: %w", err)
	}
	return e, nil
}

// CSV renders the per-entity CSV documents of the snapshot. An empty snapshot
// yields header-only documents.
func (e Export) CSV() (CSVDocuments, error) {
	txns, err := e.TransactionsCSV()
	if err != nil {
		return CSVDocuments{}, err
	}
	cats, err := e.CategoriesCSV()
	if err != nil {
		return CSVDocuments{}, err
	}
	goals, err := e.GoalsCSV()
	if err != nil {
		return CSVDocuments{}, err
	}
	return CSVDocuments{Transactions: txns, Categories: cats, Goals: goals}, nil
}

func (e Export) TransactionsCSV() ([]byte, error) {
	rows := make([][]string, 0, len(e.Data.Transactions))
	for _, t := range e.Data.Transactions {
		rows = append(rows, []string{
			t.ID,
			t.Description,
			t.Amount.String(),
			string(t.Type),
			t.CategoryID,
			t.Date.Format("2006-01-02"),
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return csvDocument(transactionColumns, rows)
}

func (e Export) CategoriesCSV() ([]byte, error) {
	rows := make([][]string, 0, len(e.Data.Categories))
	for _, c := range e.Data.Categories {
		limit := ""
		if c.MonthlyLimit != nil {
			limit = c.MonthlyLimit.String()
		}
		rows = append(rows, []string{
			c.ID,
			c.Name,
			string(c.Type),
			strconv.FormatBool(c.LimitEnabled),
			limit,
			c.Color,
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return csvDocument(categoryColumns, rows)
}

func (e Export) GoalsCSV() ([]byte, error) {
	rows := make([][]string, 0, len(e.Data.Goals))
	for _, g := range e.Data.Goals {
		target := ""
		if !g.TargetDate.IsEmpty() {
			target = g.TargetDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			g.ID,
			g.Title,
			g.Description,
			g.TargetAmount.String(),
			g.CurrentAmount.String(),
			target,
			g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return csvDocument(goalColumns, rows)
}

// ParseTransactionsCSV decodes a transactions CSV document.
func ParseTransactionsCSV(data []byte) ([]core.Transaction, error) {
	rows, err := readCSV(data, transactionColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for i, r := range rows {
		amount, err := core.ParseMoney(r[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: amount: %w", i+1, err)
		}
		date, err := core.ParseDate(r[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: date: %w", i+1, err)
		}
		created, err := time.Parse(time.RFC3339, r[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: created_at: %w", i+1, err)
		}
		out = append(out, core.Transaction{
			ID:          r[0],
			Description: r[1],
			Amount:      amount,
			Type:        core.TransactionType(r[3]),
			CategoryID:  r[4],
			Date:        date,
			CreatedAt:   created,
		})
	}
	return out, nil
}

// ParseCategoriesCSV decodes a categories CSV document.
func ParseCategoriesCSV(data []byte) ([]core.Category, error) {
	rows, err := readCSV(data, categoryColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(rows))
	for i, r := range rows {
		limitEnabled, err := strconv.ParseBool(r[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: limit_enabled: %w", i+1, err)
		}
		var limit *core.Money
		if r[4] != "" {
			m, err := core.ParseMoney(r[4])
			if err != nil {
				return nil, fmt.Errorf("row %d: monthly_limit: %w", i+1, err)
			}
			limit = &m
		}
		created, err := time.Parse(time.RFC3339, r[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: created_at: %w", i+1, err)
		}
		out = append(out, core.Category{
			ID:           r[0],
			Name:         r[1],
			Type:         core.TransactionType(r[2]),
			LimitEnabled: limitEnabled,
			MonthlyLimit: limit,
			Color:        r[5],
			CreatedAt:    created,
		})
	}
	return out, nil
}

// ParseGoalsCSV decodes a goals CSV document.
func ParseGoalsCSV(data []byte) ([]core.Goal, error) {
	rows, err := readCSV(data, goalColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(rows))
	for i, r := range rows {
		target, err := core.ParseMoney(r[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: target_amount: %w", i+1, err)
		}
		current, err := core.ParseMoney(r[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: current_amount: %w", i+1, err)
		}
		targetDate, err := core.ParseDate(r[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: target_date: %w", i+1, err)
		}
		created, err := time.Parse(time.RFC3339, r[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: created_at: %w", i+1, err)
		}
		out = append(out, core.Goal{
			ID:            r[0],
			Title:         r[1],
			Description:   r[2],
			TargetAmount:  target,
			CurrentAmount: current,
			TargetDate:    targetDate,
			CreatedAt:     created,
		})
	}
	return out, nil
}

func csvDocument(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("writing csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func readCSV(data []byte, header []string) ([][]string, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing csv header row")
	}
	if !slices.Equal(records[0], header) {
		return nil, fmt.Errorf("unexpected csv header %v", records[0])
	}
	return records[1:], nil
}
