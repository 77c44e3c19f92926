package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateLoanInput opens credit for a loan sale. TotalLoanAmount defaults to the sale total.
type CreateLoanInput struct {
	SaleID          uuid.UUID
	CustomerName    string
	CustomerPhone   string
	TotalLoanAmount *decimal.Decimal
	DueDate         *time.Time
	Notes           string
}

// RecordPaymentInput is one repayment
type RecordPaymentInput struct {
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod string
	Notes         string
}

// CustomerLoanSummary totals the loans of one customer
type CustomerLoanSummary struct {
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   *string         `json:"customer_phone,omitempty"`
	TotalLoans      int             `json:"total_loans"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
}

// LoanStatusSummary totals the loans in one status
type LoanStatusSummary struct {
	Status          string          `json:"loan_status"`
	Count           int             `json:"count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
}

// LoanService manages credit given on loan sales
type LoanService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(lg *Ledger) *LoanService {
	return &LoanService{ledger: lg, logger: lg.logger}
}

// CreateLoan opens a pending loan for a sale recorded as a loan
func (s *LoanService) CreateLoan(ctx context.Context, tenantID uuid.UUID, in CreateLoanInput) (*LoanResponse, error) {
	var out *sales.CustomerLoan
	err := s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		sale, err := repos.SaleRepo().FindByIDForUpdate(ctx, tenantID, in.SaleID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.Errorf(shared.CodeNotFound, "Sale %s not found", in.SaleID)
			}
			return err
		}
		if _, err := repos.LoanRepo().FindBySale(ctx, tenantID, sale.ID); err == nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A loan already exists for this sale")
		} else if !shared.IsNotFound(err) {
			return err
		}

		amount := sale.TotalAmount()
		if in.TotalLoanAmount != nil {
			amount = *in.TotalLoanAmount
		}
		loan, err := sales.NewCustomerLoan(sale, in.CustomerName, in.CustomerPhone, amount, in.DueDate, in.Notes)
		if err != nil {
			return err
		}
		out = loan
		return repos.LoanRepo().Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	resp := ToLoanResponse(out)
	return &resp, nil
}

// RecordPayment applies a repayment to a loan
func (s *LoanService) RecordPayment(ctx context.Context, tenantID, loanID uuid.UUID, in RecordPaymentInput) (*LoanResponse, error) {
	date := in.PaymentDate
	if date.IsZero() {
		date = shared.Today()
	}
	var out *sales.CustomerLoan
	err := s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		loan, err := repos.LoanRepo().FindByIDForUpdate(ctx, tenantID, loanID)
		if err != nil {
			return err
		}
		payment, err := loan.ApplyPayment(in.Amount, date, in.PaymentMethod, in.Notes)
		if err != nil {
			return err
		}
		if err := repos.LoanRepo().AddPayment(ctx, payment); err != nil {
			return err
		}
		out = loan
		return repos.LoanRepo().SaveWithLock(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	if out.Status == sales.LoanPaid {
		s.logger.Info("Loan fully paid",
			zap.String("tenant_id", tenantID.String()),
			zap.String("loan_id", out.ID.String()),
			zap.String("customer", out.CustomerName))
	}
	resp := ToLoanResponse(out)
	return &resp, nil
}

// DeleteLoan removes a loan with its payments and marks the sale as paid
func (s *LoanService) DeleteLoan(ctx context.Context, tenantID, loanID uuid.UUID) error {
	return s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		loan, err := repos.LoanRepo().FindByIDForUpdate(ctx, tenantID, loanID)
		if err != nil {
			return err
		}
		if err := repos.LoanRepo().Delete(ctx, tenantID, loan.ID); err != nil {
			return err
		}
		sale, err := repos.SaleRepo().FindByIDForUpdate(ctx, tenantID, loan.SaleID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil
			}
			return err
		}
		customer := ""
		if sale.CustomerName != nil {
			customer = *sale.CustomerName
		}
		if err := sale.SetPayment(sales.PaymentPaid, customer); err != nil {
			return err
		}
		sale.Touch()
		return repos.SaleRepo().SaveWithLock(ctx, sale)
	})
}

// Get returns one loan
func (s *LoanService) Get(ctx context.Context, tenantID, loanID uuid.UUID) (*LoanResponse, error) {
	loan, err := s.ledger.reads.LoanRepo().FindByID(ctx, tenantID, loanID)
	if err != nil {
		return nil, err
	}
	resp := ToLoanResponse(loan)
	return &resp, nil
}

// List pages through loans
func (s *LoanService) List(ctx context.Context, tenantID uuid.UUID, filter sales.LoanFilter) (shared.Paginated[LoanResponse], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return shared.Paginated[LoanResponse]{}, shared.Errorf(shared.CodeValidation, "Unknown loan status %q", string(filter.Status))
	}
	rows, total, err := s.ledger.reads.LoanRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[LoanResponse]{}, err
	}
	items := make([]LoanResponse, len(rows))
	for i := range rows {
		items[i] = ToLoanResponse(&rows[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// ListPayments returns the payments of a loan, oldest first
func (s *LoanService) ListPayments(ctx context.Context, tenantID, loanID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.ledger.reads.LoanRepo().FindByID(ctx, tenantID, loanID); err != nil {
		return nil, err
	}
	rows, err := s.ledger.reads.LoanRepo().FindPayments(ctx, tenantID, loanID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(rows))
	for i := range rows {
		out[i] = ToPaymentResponse(&rows[i])
	}
	return out, nil
}

// ListOverdue returns unpaid loans whose due date lies before asOf
func (s *LoanService) ListOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]LoanResponse, error) {
	rows, err := s.ledger.reads.LoanRepo().FindUnpaid(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanResponse, 0)
	for i := range rows {
		if rows[i].IsOverdue(asOf) {
			out = append(out, ToLoanResponse(&rows[i]))
		}
	}
	return out, nil
}

// SummaryByCustomer totals every loan per customer, largest outstanding balance first
func (s *LoanService) SummaryByCustomer(ctx context.Context, tenantID uuid.UUID) ([]CustomerLoanSummary, error) {
	rows, err := s.allLoans(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var out []CustomerLoanSummary
	for i := range rows {
		l := &rows[i]
		key := inventory.NameKey(l.CustomerName)
		idx, ok := index[key]
		if !ok {
			idx = len(out)
			index[key] = idx
			out = append(out, CustomerLoanSummary{
				CustomerName:    l.CustomerName,
				TotalAmount:     decimal.Zero,
				AmountPaid:      decimal.Zero,
				AmountRemaining: decimal.Zero,
			})
		}
		sum := &out[idx]
		sum.TotalLoans++
		sum.TotalAmount = sum.TotalAmount.Add(l.TotalLoanAmount)
		sum.AmountPaid = sum.AmountPaid.Add(l.AmountPaid)
		sum.AmountRemaining = sum.AmountRemaining.Add(l.AmountRemaining)
		if sum.CustomerPhone == nil {
			sum.CustomerPhone = l.CustomerPhone
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AmountRemaining.GreaterThan(out[j].AmountRemaining)
	})
	return out, nil
}

// SummaryByStatus totals loans per status in pending, partial, paid order
func (s *LoanService) SummaryByStatus(ctx context.Context, tenantID uuid.UUID) ([]LoanStatusSummary, error) {
	rows, err := s.allLoans(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	statuses := []sales.LoanStatus{sales.LoanPending, sales.LoanPartial, sales.LoanPaid}
	out := make([]LoanStatusSummary, len(statuses))
	pos := make(map[sales.LoanStatus]int, len(statuses))
	for i, st := range statuses {
		out[i] = LoanStatusSummary{Status: string(st), TotalAmount: decimal.Zero, AmountRemaining: decimal.Zero}
		pos[st] = i
	}
	for i := range rows {
		idx, ok := pos[rows[i].Status]
		if !ok {
			return nil, shared.Errorf(shared.CodeInvariantViolation, "Loan %s has unknown status %q", rows[i].ID, string(rows[i].Status))
		}
		out[idx].Count++
		out[idx].TotalAmount = out[idx].TotalAmount.Add(rows[i].TotalLoanAmount)
		out[idx].AmountRemaining = out[idx].AmountRemaining.Add(rows[i].AmountRemaining)
	}
	return out, nil
}

func (s *LoanService) allLoans(ctx context.Context, tenantID uuid.UUID) ([]sales.CustomerLoan, error) {
	filter := sales.LoanFilter{Filter: shared.Filter{Page: 1, PageSize: 200, OrderBy: "created_at", OrderDir: "asc"}}
	var all []sales.CustomerLoan
	for {
		page, total, err := s.ledger.reads.LoanRepo().FindAll(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}
