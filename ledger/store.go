package ledger

import (
	"context"
	"time"

	"backend/models"
)

// Store is the engine's storage seam. Mutating operations go through
// RunTransaction so their reads and writes commit as one unit; the
// remaining methods are non-transactional reads for dashboards and views.
// The engine never trusts a value read outside a transaction for a
// conditional write.
type Store interface {
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	ActiveShift(ctx context.Context) (*models.Shift, error)
	ShiftSales(ctx context.Context, shiftID string) ([]models.Sale, error)
	ShiftLoans(ctx context.Context, shiftID string) ([]models.Loan, error)
	CashBalance(ctx context.Context) (float64, error)
	TotalProviderDebt(ctx context.Context) (float64, error)
	LowStock(ctx context.Context, location string, threshold int64) ([]LowStockProduct, error)
}

// Tx exposes the reads and writes available inside one transaction. Reads
// observe a view consistent with the transaction's own writes and with the
// state at commit time.
type Tx interface {
	Product(id string) (*models.Product, error)
	Provider(id string) (*models.Provider, error)
	Worker(id string) (*models.Worker, error)

	// Stock returns the current unit count, zero when the level document
	// does not exist yet.
	Stock(productID, location string) (int64, error)
	// AdjustStock re-reads the level and writes count+delta, failing with
	// ErrInsufficientStock when that would go negative.
	AdjustStock(productID, location string, delta int64) error
	// EnsureStockLevels creates the two zero-initialized level documents
	// for a new product, leaving existing ones untouched.
	EnsureStockLevels(productID string) error

	InsertPurchase(p *models.Purchase) error
	AddProviderBalance(providerID string, amount float64) error
	ResetProviderBalance(providerID string) error

	// InsertCashflow appends the entry and moves the running balance
	// counter by the entry's signed amount in the same transaction.
	InsertCashflow(e *models.CashflowEntry) error

	ActiveShift() (*models.Shift, error)
	// InsertShift creates the shift and claims the active-shift pointer,
	// failing with ErrShiftAlreadyOpen when the pointer is already held.
	InsertShift(s *models.Shift) error
	// CloseShift marks the shift closed with its summary and releases the
	// active-shift pointer.
	CloseShift(shiftID string, end time.Time, summary models.ShiftSummary) error
	Sales(shiftID string) ([]models.Sale, error)
	Loans(shiftID string) ([]models.Loan, error)
	InsertSale(s *models.Sale) error
	InsertLoan(l *models.Loan) error

	InsertProviderSettlement(s *models.ProviderSettlement) error
	InsertWorkerSettlement(s *models.WorkerSettlement) error
}

// LowStockProduct is a dashboard row for bar stock under the alert threshold.
type LowStockProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}
