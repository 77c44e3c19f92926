package persistence

import (
	"context"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope runs ledger work in one GORM transaction
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
// Deadlocks and serialization failures surface as CONCURRENCY_CONFLICT.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedgerRepositories(tx))
	})
	return translateConflict(err)
}

// LedgerRepositories builds every ledger repository on one handle
type LedgerRepositories struct {
	db *gorm.DB
}

// NewLedgerRepositories binds the repositories to db, which may be a transaction
func NewLedgerRepositories(db *gorm.DB) *LedgerRepositories {
	return &LedgerRepositories{db: db}
}

func (r *LedgerRepositories) VarietyRepo() inventory.VarietyRepository {
	return NewGormVarietyRepository(r.db)
}

func (r *LedgerRepositories) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.db)
}

func (r *LedgerRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.db)
}

func (r *LedgerRepositories) ReturnRepo() inventory.SupplierReturnRepository {
	return NewGormSupplierReturnRepository(r.db)
}

func (r *LedgerRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *LedgerRepositories) LoanRepo() sales.LoanRepository {
	return NewGormLoanRepository(r.db)
}

func (r *LedgerRepositories) ConsignmentRepo() consignment.ShopkeeperStockRepository {
	return NewGormShopkeeperStockRepository(r.db)
}

var (
	_ ledger.TransactionScope = (*GormTransactionScope)(nil)
	_ ledger.Repositories     = (*LedgerRepositories)(nil)
)
