package ledger

import (
	"context"

	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations made through the provided Repositories are part of one
// database transaction and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository the ledger touches.
// Inside TransactionScope.Execute they share the transaction; outside they read committed data.
type Repositories interface {
	VarietyRepo() inventory.VarietyRepository
	BatchRepo() inventory.BatchRepository
	MovementRepo() inventory.MovementRepository
	ReturnRepo() inventory.SupplierReturnRepository
	SaleRepo() sales.SaleRepository
	LoanRepo() sales.LoanRepository
	ConsignmentRepo() consignment.ShopkeeperStockRepository
}
