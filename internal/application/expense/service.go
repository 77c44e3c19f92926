package expense

import (
	"context"
	"time"

	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateInput holds the fields of a new expense
type CreateInput struct {
	Category    string
	Amount      decimal.Decimal
	ExpenseDate time.Time
	Description string
}

// Response represents an expense in API responses
type Response struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts a domain expense
func ToResponse(e *expense.Expense) Response {
	return Response{
		ID:          e.ID,
		Category:    string(e.Category),
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// CategoryTotal is the spend of one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// Summary totals expenses over a date range
type Summary struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Total      decimal.Decimal `json:"total_amount"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Service manages shop expenses
type Service struct {
	repo   expense.Repository
	logger *zap.Logger
}

// NewService creates a new expense Service
func NewService(repo expense.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create records an expense
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*Response, error) {
	date := in.ExpenseDate
	if date.IsZero() {
		date = shared.Today()
	}
	e, err := expense.NewExpense(tenantID, expense.Category(in.Category), in.Amount, date, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	resp := ToResponse(e)
	return &resp, nil
}

// List pages through expenses
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter expense.Filter) (shared.Paginated[Response], error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return shared.Paginated[Response]{}, shared.Errorf(shared.CodeValidation, "Unknown expense category %q", string(filter.Category))
	}
	rows, total, err := s.repo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[Response]{}, err
	}
	items := make([]Response, len(rows))
	for i := range rows {
		items[i] = ToResponse(&rows[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Delete removes an expense
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

// DailySummary totals the expenses of one day
func (s *Service) DailySummary(ctx context.Context, tenantID uuid.UUID, date time.Time) (*Summary, error) {
	return s.Summarize(ctx, tenantID, shared.DayRange(date))
}

// Summarize totals the expenses in a date range, with per-category totals in order of first appearance
func (s *Service) Summarize(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) (*Summary, error) {
	rows, err := s.repo.FindByDates(ctx, tenantID, dates)
	if err != nil {
		return nil, err
	}
	out := &Summary{From: dates.From, To: dates.To, Total: decimal.Zero, ByCategory: []CategoryTotal{}}
	index := make(map[expense.Category]int)
	for _, e := range rows {
		out.Total = out.Total.Add(e.Amount)
		out.Count++
		idx, ok := index[e.Category]
		if !ok {
			idx = len(out.ByCategory)
			index[e.Category] = idx
			out.ByCategory = append(out.ByCategory, CategoryTotal{Category: string(e.Category), Amount: decimal.Zero})
		}
		out.ByCategory[idx].Amount = out.ByCategory[idx].Amount.Add(e.Amount)
		out.ByCategory[idx].Count++
	}
	return out, nil
}
