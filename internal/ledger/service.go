package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/internal/notifications"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

type gate interface {
	CheckAndConsume(ctx context.Context, tenantSlug string, kind enums.ActionKind) (bool, error)
}

// Service defines operations that record and report ledger lines.
type Service interface {
	Record(ctx context.Context, tenant string, input RecordInput) (*RecordResult, error)
	List(ctx context.Context, tenant string, params ListParams) (*ListResult, error)
	Summary(ctx context.Context, tenant string, period Period) (*Summary, error)
}

// RecordInput captures the data a ledger line requires. Date defaults to today.
type RecordInput struct {
	Title         string                    `json:"title"`
	Amount        decimal.Decimal           `json:"amount"`
	Type          enums.TransactionType     `json:"type"`
	Category      enums.TransactionCategory `json:"category"`
	Date          string                    `json:"date"`
	AppointmentID string                    `json:"appointment_id"`
}

// RecordResult reports whether the plan allowed the line. Transaction is nil
// when Allowed is false.
type RecordResult struct {
	Allowed     bool                `json:"allowed"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

type service struct {
	repo  Repository
	gate  gate
	sink  notifications.Sink
	loc   *time.Location
	now   func() time.Time
	newID func() uuid.UUID
}

// NewService wires a ledger service. A nil sink discards events and a nil
// location means UTC.
func NewService(repo Repository, g gate, sink notifications.Sink, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if g == nil {
		return nil, fmt.Errorf("usage gate required")
	}
	if sink == nil {
		sink = notifications.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, gate: g, sink: sink, loc: loc, now: time.Now, newID: uuid.New}, nil
}

func (in RecordInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	// A checkout line mirrors the appointment total, which may be zero.
	if in.AppointmentID != "" {
		if in.Amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
		}
	} else if !in.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if !in.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", in.Type))
	}
	if !in.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction category %q", in.Category))
	}
	if in.Date != "" {
		if _, err := time.Parse(time.DateOnly, in.Date); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
		}
	}
	return nil
}

// Record gates, persists and announces one ledger line. A plan denial is not
// an error: the result carries Allowed=false and nothing is written.
func (s *service) Record(ctx context.Context, tenant string, input RecordInput) (*RecordResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	allowed, err := s.gate.CheckAndConsume(ctx, tenant, enums.ActionKindTransaction)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &RecordResult{Allowed: false}, nil
	}

	now := s.now()
	date := input.Date
	if date == "" {
		date = now.In(s.loc).Format(time.DateOnly)
	}
	tx := models.Transaction{
		ID:            s.newID().String(),
		Title:         strings.TrimSpace(input.Title),
		Amount:        input.Amount,
		Type:          input.Type,
		Category:      input.Category,
		Status:        enums.TransactionStatusPaid,
		Date:          date,
		AppointmentID: input.AppointmentID,
		CreatedAt:     now.UTC(),
	}
	if err := s.repo.Append(ctx, tenant, tx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transactions")
	}

	s.sink.Notify(ctx, notifications.FromTransaction(tenant, tx, tx.Title))
	return &RecordResult{Allowed: true, Transaction: &tx}, nil
}

// Period bounds a report by inclusive YYYY-MM-DD dates. Empty bounds are open.
type Period struct {
	From string
	To   string
}

func (p Period) validate() error {
	for _, v := range []string{p.From, p.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "dates must be YYYY-MM-DD")
		}
	}
	if p.From != "" && p.To != "" && p.From > p.To {
		return pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	return nil
}

func (p Period) contains(date string) bool {
	if p.From != "" && date < p.From {
		return false
	}
	if p.To != "" && date > p.To {
		return false
	}
	return true
}

// ListParams filters and pages ledger listings, newest first.
type ListParams struct {
	Type     enums.TransactionType
	Category enums.TransactionCategory
	Period   Period
	Limit    int
	Cursor   string
}

// ListResult wraps returned transactions and the cursor for the next page.
type ListResult struct {
	Items  []models.Transaction `json:"items"`
	Cursor string               `json:"cursor"`
}

func (s *service) List(ctx context.Context, tenant string, params ListParams) (*ListResult, error) {
	if params.Type != "" && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", params.Type))
	}
	if params.Category != "" && !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction category %q", params.Category))
	}
	if err := params.Period.validate(); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items, err := s.repo.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	sort.SliceStable(items, func(i, j int) bool {
		return newer(items[i], items[j])
	})

	limit := pagination.NormalizeLimit(params.Limit)
	out := make([]models.Transaction, 0, limit)
	next := ""
	for _, item := range items {
		if params.Type != "" && item.Type != params.Type {
			continue
		}
		if params.Category != "" && item.Category != params.Category {
			continue
		}
		if !params.Period.contains(item.Date) {
			continue
		}
		if cursor != nil && !afterCursor(item, *cursor) {
			continue
		}
		if len(out) == limit {
			last := out[len(out)-1]
			next = encodeCursor(last)
			break
		}
		out = append(out, item)
	}
	return &ListResult{Items: out, Cursor: next}, nil
}

func newer(a, b models.Transaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func afterCursor(item models.Transaction, c pagination.Cursor) bool {
	return newer(models.Transaction{CreatedAt: c.CreatedAt, ID: c.ID.String()}, item)
}

func encodeCursor(tx models.Transaction) string {
	id, err := uuid.Parse(tx.ID)
	if err != nil {
		return ""
	}
	return pagination.EncodeCursor(pagination.Cursor{CreatedAt: tx.CreatedAt, ID: id})
}

// CategoryTotal is the sum of one category within one transaction type.
type CategoryTotal struct {
	Type     enums.TransactionType     `json:"type"`
	Category enums.TransactionCategory `json:"category"`
	Label    string                    `json:"label"`
	Total    decimal.Decimal           `json:"total"`
}

// Summary aggregates a period of ledger lines.
type Summary struct {
	From       string          `json:"from,omitempty"`
	To         string          `json:"to,omitempty"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

func (s *service) Summary(ctx context.Context, tenant string, period Period) (*Summary, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return summarize(items, period), nil
}

func summarize(items []models.Transaction, period Period) *Summary {
	out := &Summary{From: period.From, To: period.To, Income: decimal.Zero, Expense: decimal.Zero, ByCategory: []CategoryTotal{}}
	type bucket struct {
		typ enums.TransactionType
		cat enums.TransactionCategory
	}
	totals := map[bucket]decimal.Decimal{}
	order := []bucket{}
	for _, item := range items {
		if !period.contains(item.Date) {
			continue
		}
		out.Count++
		switch item.Type {
		case enums.TransactionTypeIncome:
			out.Income = out.Income.Add(item.Amount)
		case enums.TransactionTypeExpense:
			out.Expense = out.Expense.Add(item.Amount)
		}
		key := bucket{typ: item.Type, cat: item.Category}
		if _, ok := totals[key]; !ok {
			order = append(order, key)
			totals[key] = decimal.Zero
		}
		totals[key] = totals[key].Add(item.Amount)
	}
	out.Balance = out.Income.Sub(out.Expense)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].typ != order[j].typ {
			return order[i].typ < order[j].typ
		}
		return totals[order[i]].GreaterThan(totals[order[j]])
	})
	for _, key := range order {
		out.ByCategory = append(out.ByCategory, CategoryTotal{
			Type:     key.typ,
			Category: key.cat,
			Label:    key.cat.Label(),
			Total:    totals[key],
		})
	}
	return out
}
