package ledger

import (
	"context"
	"fmt"
	"time"

	"backend/models"

	"github.com/sirupsen/logrus"
)

// Engine wraps the Store with the business rules: stock movement, purchase
// and sale recording, shift settlement and supplier settlement. Every
// operation that touches more than one document runs in one transaction.
type Engine struct {
	store Store
	log   *logrus.Logger
}

func New(store Store, log *logrus.Logger) *Engine {
	return &Engine{store: store, log: log}
}

type PurchaseInput struct {
	ProviderID     string `json:"provider_id" binding:"required"`
	ProductID      string `json:"product_id" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required"`
	Unit           string `json:"unit" binding:"required"`
	SettlementType string `json:"settlement_type" binding:"required"` // "cash" or "consignment"
}

type TransferInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
	Unit      string `json:"unit" binding:"required"`
}

type SaleInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Units     int64  `json:"units" binding:"required"`
}

type LoanInput struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// RecordPurchase appends a purchase, credits warehouse stock and either
// debits cash (cash purchase) or credits the provider's payable balance
// (consignment). The three effects commit together or not at all.
func (e *Engine) RecordPurchase(ctx context.Context, in PurchaseInput) (*models.Purchase, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidInput
	}
	if in.SettlementType != "cash" && in.SettlementType != "consignment" {
		return nil, ErrInvalidInput
	}

	var purchase *models.Purchase
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		product, err := tx.Product(in.ProductID)
		if err != nil {
			return err
		}
		if _, err := tx.Provider(in.ProviderID); err != nil {
			return err
		}
		units, err := ToBaseUnits(in.Quantity, in.Unit, product)
		if err != nil {
			return err
		}
		totalCost := float64(units) * product.PurchaseCost

		purchase = &models.Purchase{
			ProviderID:     in.ProviderID,
			ProductID:      in.ProductID,
			ProductName:    product.Name,
			SettlementType: in.SettlementType,
			Units:          units,
			TotalCost:      totalCost,
			Date:           time.Now(),
		}
		if err := tx.InsertPurchase(purchase); err != nil {
			return err
		}
		if err := tx.AdjustStock(in.ProductID, models.LocationWarehouse, units); err != nil {
			return err
		}
		if in.SettlementType == "consignment" {
			return tx.AddProviderBalance(in.ProviderID, totalCost)
		}
		return tx.InsertCashflow(&models.CashflowEntry{
			Type:        models.CashExpense,
			Amount:      totalCost,
			Description: fmt.Sprintf("Cash purchase: %dx %s", units, product.Name),
			Date:        purchase.Date,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"product":    purchase.ProductID,
		"provider":   purchase.ProviderID,
		"units":      purchase.Units,
		"total_cost": purchase.TotalCost,
		"settlement": purchase.SettlementType,
	}).Info("purchase recorded")
	return purchase, nil
}

// TransferToBar moves units from warehouse to bar stock for one product.
// The decrement and increment land in the same transaction; an insufficient
// warehouse level aborts the whole transfer.
func (e *Engine) TransferToBar(ctx context.Context, in TransferInput) error {
	if in.Quantity <= 0 {
		return ErrInvalidInput
	}

	var units int64
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		product, err := tx.Product(in.ProductID)
		if err != nil {
			return err
		}
		units, err = ToBaseUnits(in.Quantity, in.Unit, product)
		if err != nil {
			return err
		}
		if err := tx.AdjustStock(in.ProductID, models.LocationWarehouse, -units); err != nil {
			return err
		}
		return tx.AdjustStock(in.ProductID, models.LocationBar, units)
	})
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{"product": in.ProductID, "units": units}).Info("stock transferred to bar")
	return nil
}

// OpenShift starts a shift for the worker, snapshotting the base pay. Only
// one shift may be open system-wide; the claim on the active-shift pointer
// happens in the same transaction that creates the shift document.
func (e *Engine) OpenShift(ctx context.Context, workerID string) (*models.Shift, error) {
	if workerID == "" {
		return nil, ErrInvalidInput
	}

	var shift *models.Shift
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		worker, err := tx.Worker(workerID)
		if err != nil {
			return err
		}
		shift = &models.Shift{
			WorkerID:   workerID,
			WorkerName: worker.Name,
			BasePay:    worker.BasePay,
			Status:     models.ShiftOpen,
			Start:      time.Now(),
		}
		return tx.InsertShift(shift)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"shift": shift.ID.Hex(), "worker": workerID}).Info("shift opened")
	return shift, nil
}

// RecordSale debits bar stock and appends a sale to the open shift.
func (e *Engine) RecordSale(ctx context.Context, in SaleInput) (*models.Sale, error) {
	if in.Units <= 0 {
		return nil, ErrInvalidInput
	}

	var sale *models.Sale
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		shift, err := tx.ActiveShift()
		if err != nil {
			return err
		}
		if shift == nil {
			return ErrNoOpenShift
		}
		product, err := tx.Product(in.ProductID)
		if err != nil {
			return err
		}
		if err := tx.AdjustStock(in.ProductID, models.LocationBar, -in.Units); err != nil {
			return err
		}
		sale = &models.Sale{
			ShiftID:        shift.ID.Hex(),
			ProductID:      in.ProductID,
			ProductName:    product.Name,
			Units:          in.Units,
			UnitSalePrice:  product.SalePrice,
			UnitTokenPrice: product.TokenPrice,
			TotalSale:      float64(in.Units) * product.SalePrice,
			TotalTokens:    float64(in.Units) * product.TokenPrice,
			Date:           time.Now(),
		}
		return tx.InsertSale(sale)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"shift":   sale.ShiftID,
		"product": sale.ProductID,
		"units":   sale.Units,
		"total":   sale.TotalSale,
	}).Info("sale recorded")
	return sale, nil
}

// RecordLoan appends a loan to the open shift. There is no cap against the
// shift's earnings; a shift may close with negative net pay.
func (e *Engine) RecordLoan(ctx context.Context, in LoanInput) (*models.Loan, error) {
	if in.Amount <= 0 || in.Description == "" {
		return nil, ErrInvalidInput
	}

	var loan *models.Loan
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		shift, err := tx.ActiveShift()
		if err != nil {
			return err
		}
		if shift == nil {
			return ErrNoOpenShift
		}
		loan = &models.Loan{
			ShiftID:     shift.ID.Hex(),
			Description: in.Description,
			Amount:      in.Amount,
			Date:        time.Now(),
		}
		return tx.InsertLoan(loan)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"shift": loan.ShiftID, "amount": loan.Amount}).Info("loan recorded")
	return loan, nil
}

// CloseShift recomputes the shift totals from its sale and loan records,
// freezes them on the shift, writes the worker settlement and emits the
// cash entries, all in one transaction. Closing is terminal.
func (e *Engine) CloseShift(ctx context.Context) (*models.WorkerSettlement, error) {
	var settlement *models.WorkerSettlement
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		shift, err := tx.ActiveShift()
		if err != nil {
			return err
		}
		if shift == nil {
			return ErrNoOpenShift
		}
		shiftID := shift.ID.Hex()

		sales, err := tx.Sales(shiftID)
		if err != nil {
			return err
		}
		loans, err := tx.Loans(shiftID)
		if err != nil {
			return err
		}

		var gross, tokens, loaned float64
		for _, s := range sales {
			gross += s.TotalSale
			tokens += s.TotalTokens
		}
		for _, l := range loans {
			loaned += l.Amount
		}
		summary := models.ShiftSummary{
			GrossRevenue:  gross,
			TokenEarnings: tokens,
			LoansTotal:    loaned,
			NetPayable:    shift.BasePay + tokens - loaned,
		}

		end := time.Now()
		if err := tx.CloseShift(shiftID, end, summary); err != nil {
			return err
		}
		settlement = &models.WorkerSettlement{
			WorkerID:      shift.WorkerID,
			WorkerName:    shift.WorkerName,
			ShiftID:       shiftID,
			GrossRevenue:  gross,
			TokenEarnings: tokens,
			LoansTotal:    loaned,
			BasePay:       shift.BasePay,
			NetPayable:    summary.NetPayable,
			Date:          end,
		}
		if err := tx.InsertWorkerSettlement(settlement); err != nil {
			return err
		}
		if gross > 0 {
			err := tx.InsertCashflow(&models.CashflowEntry{
				Type:        models.CashIncome,
				Amount:      gross,
				Description: fmt.Sprintf("Shift close %s", shift.WorkerName),
				Date:        end,
			})
			if err != nil {
				return err
			}
		}
		if summary.NetPayable > 0 {
			err := tx.InsertCashflow(&models.CashflowEntry{
				Type:        models.CashExpense,
				Amount:      summary.NetPayable,
				Description: fmt.Sprintf("Shift settlement %s", shift.WorkerName),
				Date:        end,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"shift":       settlement.ShiftID,
		"worker":      settlement.WorkerID,
		"gross":       settlement.GrossRevenue,
		"net_payable": settlement.NetPayable,
	}).Info("shift closed")
	return settlement, nil
}

// SettleProvider pays off the provider's pending balance: one settlement
// record, balance reset to zero and one cash expense, atomically.
func (e *Engine) SettleProvider(ctx context.Context, providerID string) (*models.ProviderSettlement, error) {
	var settlement *models.ProviderSettlement
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		provider, err := tx.Provider(providerID)
		if err != nil {
			return err
		}
		if provider.PendingBalance <= 0 {
			return ErrNothingToSettle
		}
		date := time.Now()
		settlement = &models.ProviderSettlement{
			ProviderID:   providerID,
			ProviderName: provider.Name,
			AmountPaid:   provider.PendingBalance,
			Date:         date,
		}
		if err := tx.InsertProviderSettlement(settlement); err != nil {
			return err
		}
		if err := tx.ResetProviderBalance(providerID); err != nil {
			return err
		}
		return tx.InsertCashflow(&models.CashflowEntry{
			Type:        models.CashExpense,
			Amount:      settlement.AmountPaid,
			Description: fmt.Sprintf("Provider settlement: %s", provider.Name),
			Date:        date,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"provider": providerID, "amount": settlement.AmountPaid}).Info("provider settled")
	return settlement, nil
}

// RecordManualEntry appends a manual cash movement tagged with the acting
// user.
func (e *Engine) RecordManualEntry(ctx context.Context, userID string, in models.ManualEntryInput) (*models.CashflowEntry, error) {
	if in.Amount <= 0 || in.Description == "" {
		return nil, ErrInvalidInput
	}
	if in.Type != models.CashIncome && in.Type != models.CashExpense {
		return nil, ErrInvalidInput
	}

	entry := &models.CashflowEntry{
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        time.Now(),
		Manual:      true,
		UserID:      userID,
	}
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		return tx.InsertCashflow(entry)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"type": entry.Type, "amount": entry.Amount, "user": userID}).Info("manual cash entry")
	return entry, nil
}

// CreateProductStock zero-initializes the two stock level documents for a
// freshly created product.
func (e *Engine) CreateProductStock(ctx context.Context, productID string) error {
	return e.store.RunTransaction(ctx, func(tx Tx) error {
		return tx.EnsureStockLevels(productID)
	})
}

func (e *Engine) ActiveShift(ctx context.Context) (*models.Shift, error) {
	return e.store.ActiveShift(ctx)
}

func (e *Engine) ShiftSales(ctx context.Context, shiftID string) ([]models.Sale, error) {
	return e.store.ShiftSales(ctx, shiftID)
}

func (e *Engine) ShiftLoans(ctx context.Context, shiftID string) ([]models.Loan, error) {
	return e.store.ShiftLoans(ctx, shiftID)
}

// CurrentCashBalance reads the running balance counter maintained alongside
// every cashflow append. It covers full history, independent of the bounded
// display window.
func (e *Engine) CurrentCashBalance(ctx context.Context) (float64, error) {
	return e.store.CashBalance(ctx)
}

func (e *Engine) TotalProviderDebt(ctx context.Context) (float64, error) {
	return e.store.TotalProviderDebt(ctx)
}

func (e *Engine) LowStockProducts(ctx context.Context, threshold int64) ([]LowStockProduct, error) {
	return e.store.LowStock(ctx, models.LocationBar, threshold)
}
