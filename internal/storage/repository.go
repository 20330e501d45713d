// Package storage persists the entity store in SQLite. Amounts are stored as
// integer cents, dates as "2006-01-02" text and timestamps as RFC 3339 text.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the requested id does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- categories ----

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	var limit any
	if c.MonthlyLimit != nil {
		limit = c.MonthlyLimit.Cents
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, color, limit_enabled, monthly_limit_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Color, c.LimitEnabled, limit, encodeTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name, "type", c.Type)
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, limit_enabled, monthly_limit_cents, created_at
		 FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color, limit_enabled, monthly_limit_cents, created_at
		 FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	var limit any
	if c.MonthlyLimit != nil {
		limit = c.MonthlyLimit.Cents
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ?, limit_enabled = ?, monthly_limit_cents = ?
		 WHERE id = ?`,
		c.Name, string(c.Type), c.Color, c.LimitEnabled, limit, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "update category")
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "delete category")
}

// ---- transactions ----

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, description, amount_cents, type, category_id, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, string(t.Type), t.CategoryID, encodeDate(t.Date), encodeTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"type", t.Type)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, type, category_id, date, created_at
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns all transactions most recent first, ties broken by
// creation time.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category_id, date, created_at
		 FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount_cents = ?, type = ?, category_id = ?, date = ?
		 WHERE id = ?`,
		t.Description, t.Amount.Cents, string(t.Type), t.CategoryID, encodeDate(t.Date), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "update transaction")
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "delete transaction")
}

// ---- goals ----

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, title, description, target_amount_cents, current_amount_cents, target_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents, encodeOptionalDate(g.TargetDate), encodeTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, target_amount_cents, current_amount_cents, target_date, created_at
		 FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, target_amount_cents, current_amount_cents, target_date, created_at
		 FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("list goals: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, description = ?, target_amount_cents = ?, current_amount_cents = ?, target_date = ?
		 WHERE id = ?`,
		g.Title, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents, encodeOptionalDate(g.TargetDate), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, "update goal")
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, "delete goal")
}

// ---- alerts ----

func (r *SQLiteRepository) ListAlerts(ctx context.Context) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, period, message, amount_spent_cents, limit_amount_cents, percentage, date, is_read, created_at
		 FROM alerts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAlert inserts the alert or, when one already exists for the same
// category and period, updates it in place keeping the stored id and first
// detection date.
func (r *SQLiteRepository) UpsertAlert(ctx context.Context, a core.Alert) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (id, category_id, period, message, amount_spent_cents, limit_amount_cents, percentage, date, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (category_id, period) DO UPDATE SET
		   message = excluded.message,
		   amount_spent_cents = excluded.amount_spent_cents,
		   limit_amount_cents = excluded.limit_amount_cents,
		   percentage = excluded.percentage,
		   is_read = excluded.is_read`,
		a.ID, a.CategoryID, a.Period, a.Message, a.AmountSpent.Cents, a.LimitAmount.Cents,
		a.Percentage, encodeDate(a.Date), a.IsRead, encodeTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert alert: %w", err)
	}

	slog.InfoContext(ctx, "Alert saved",
		"category_id", a.CategoryID,
		"period", a.Period,
		"percentage", a.Percentage)
	return nil
}

// MarkAlertRead sets is_read and returns the stored alert. Marking an already
// read alert is a no-op.
func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, id string) (core.Alert, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ?`, id); err != nil {
		return core.Alert{}, fmt.Errorf("mark alert read: %w", err)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, period, message, amount_spent_cents, limit_amount_cents, percentage, date, is_read, created_at
		 FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err != nil {
		return core.Alert{}, fmt.Errorf("mark alert read: %w", err)
	}
	return a, nil
}

// ---- scanning helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c          core.Category
		typ        string
		limitCents sql.NullInt64
		createdAt  string
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Color, &c.LimitEnabled, &limitCents, &createdAt); err != nil {
		return core.Category{}, mapScanErr(err)
	}
	c.Type = core.TransactionType(typ)
	if limitCents.Valid {
		c.MonthlyLimit = &core.Money{Cents: limitCents.Int64}
	}
	created, err := decodeTime(createdAt)
	if err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = created
	return c, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		date      string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &typ, &t.CategoryID, &date, &createdAt); err != nil {
		return core.Transaction{}, mapScanErr(err)
	}
	t.Type = core.TransactionType(typ)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = d
	created, err := decodeTime(createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt = created
	return t, nil
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g          core.Goal
		targetDate sql.NullString
		createdAt  string
	)
	if err := row.Scan(&g.ID, &g.Title, &g.Description, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &targetDate, &createdAt); err != nil {
		return core.Goal{}, mapScanErr(err)
	}
	if targetDate.Valid {
		d, err := core.ParseDate(targetDate.String)
		if err != nil {
			return core.Goal{}, err
		}
		g.TargetDate = d
	}
	created, err := decodeTime(createdAt)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = created
	return g, nil
}

func scanAlert(row rowScanner) (core.Alert, error) {
	var (
		a         core.Alert
		date      string
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.CategoryID, &a.Period, &a.Message, &a.AmountSpent.Cents, &a.LimitAmount.Cents, &a.Percentage, &date, &a.IsRead, &createdAt); err != nil {
		return core.Alert{}, mapScanErr(err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Alert{}, err
	}
	a.Date = d
	created, err := decodeTime(createdAt)
	if err != nil {
		return core.Alert{}, err
	}
	a.CreatedAt = created
	return a, nil
}

func mapScanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func encodeDate(d core.Date) string {
	return d.Format("2006-01-02")
}

func encodeOptionalDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return encodeDate(d)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
