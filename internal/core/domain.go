package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

type (
	TransactionType string

	// Date is a calendar date. The time-of-day portion is always midnight UTC;
	// a zero Date means "not set" for optional dates.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Type         TransactionType `json:"type"`
		Color        string          `json:"color"`
		LimitEnabled bool            `json:"limit_enabled"`
		MonthlyLimit *Money          `json:"monthly_limit"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"category_id"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	Goal struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		Description   string    `json:"description"`
		TargetAmount  Money     `json:"target_amount"`
		CurrentAmount Money     `json:"current_amount"`
		TargetDate    Date      `json:"target_date"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// Alert records a detected limit-threshold crossing for a category in a
	// given period. Period is the calendar month ("2006-01") the spending
	// belongs to; (CategoryID, Period) is the alert's deduplication identity.
	Alert struct {
		ID          string    `json:"id"`
		CategoryID  string    `json:"category_id"`
		Period      string    `json:"period"`
		Message     string    `json:"message"`
		AmountSpent Money     `json:"amount_spent"`
		LimitAmount Money     `json:"limit_amount"`
		Percentage  float64   `json:"percentage"`
		Date        Date      `json:"date"`
		IsRead      bool      `json:"is_read"`
		CreatedAt   time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyName            = errors.New("empty category name")
	ErrEmptyTitle           = errors.New("empty goal title")
	ErrEmptyCategory        = errors.New("empty category reference")
	ErrLimitRequired        = errors.New("monthly limit required when limit is enabled")
	ErrZeroTarget           = errors.New("goal target amount must be positive")
	ErrCategoryTypeMismatch = errors.New("transaction type does not match category type")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports whether the optional date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// SameMonth reports whether the date falls in the calendar month containing ref.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

// MarshalJSON renders the date as "2006-01-02", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = Date{Time: t}
	return nil
}

// ParseDate parses a YYYY-MM-DD string; the empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.IsValid() {
		return ErrInvalidType
	}
	if c.LimitEnabled {
		if c.MonthlyLimit == nil || c.MonthlyLimit.Cents <= 0 {
			return ErrLimitRequired
		}
	}
	return nil
}

// HasLimit reports whether the category is a candidate for alert evaluation.
func (c Category) HasLimit() bool {
	return c.Type == Expense && c.LimitEnabled && c.MonthlyLimit != nil && c.MonthlyLimit.Cents > 0
}

// NewCategory builds a validated category with a fresh id.
func NewCategory(name string, typ TransactionType, color string, limitEnabled bool, monthlyLimit *Money) (Category, error) {
	if color == "" {
		color = DefaultCategoryColor
	}
	c := Category{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Type:         typ,
		Color:        color,
		LimitEnabled: limitEnabled,
		MonthlyLimit: monthlyLimit,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// NewTransaction builds a validated transaction with a fresh id. The
// transaction's type must match the referenced category's type; this is the
// entity-store boundary check that downstream aggregation relies on.
func NewTransaction(description string, amount Money, typ TransactionType, category Category, date Date) (Transaction, error) {
	if typ != category.Type {
		return Transaction{}, ErrCategoryTypeMismatch
	}
	t := Transaction{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Type:        typ,
		CategoryID:  category.ID,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrZeroTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewGoal builds a validated goal with a fresh id. TargetDate may be the zero
// Date when the goal has no deadline.
func NewGoal(title, description string, targetAmount Money, targetDate Date) (Goal, error) {
	g := Goal{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		TargetAmount: targetAmount,
		TargetDate:   targetDate,
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}
