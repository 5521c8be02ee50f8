package ledger

import (
	"context"
	"io"
	"sync"
	"testing"

	"backend/models"

	"github.com/sirupsen/logrus"
)

func newTestEngine(t *testing.T) (*Engine, *MemStore) {
	t.Helper()
	store := NewMemStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(store, log), store
}

func seedBeer(store *MemStore) string {
	return store.AddProduct(models.Product{
		Name:           "Beer",
		SalePrice:      2500,
		PurchaseCost:   2000,
		TokenPrice:     1000,
		UnitsPerBox:    24,
		UnitsPerBasket: 30,
		Active:         true,
	})
}

func TestRecordPurchaseCash(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	providerID := store.AddProvider(models.Provider{Name: "Distribuidora X", Consignment: true})

	purchase, err := engine.RecordPurchase(context.Background(), PurchaseInput{
		ProviderID:     providerID,
		ProductID:      productID,
		Quantity:       2,
		Unit:           models.UnitBox,
		SettlementType: "cash",
	})
	if err != nil {
		t.Fatalf("RecordPurchase() error = %v", err)
	}

	if purchase.Units != 48 {
		t.Errorf("purchase units = %d, want 48", purchase.Units)
	}
	if purchase.TotalCost != 96000 {
		t.Errorf("purchase total = %v, want 96000", purchase.TotalCost)
	}
	if got := store.StockUnits(productID, models.LocationWarehouse); got != 48 {
		t.Errorf("warehouse stock = %d, want 48", got)
	}
	if got := store.ProviderBalance(providerID); got != 0 {
		t.Errorf("provider balance = %v, want 0", got)
	}

	entries := store.CashflowEntries()
	if len(entries) != 1 {
		t.Fatalf("cashflow entries = %d, want 1", len(entries))
	}
	if entries[0].Type != models.CashExpense || entries[0].Amount != 96000 {
		t.Errorf("cashflow entry = %+v, want expense of 96000", entries[0])
	}
}

func TestRecordPurchaseConsignment(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	providerID := store.AddProvider(models.Provider{Name: "Distribuidora X", Consignment: true})

	_, err := engine.RecordPurchase(context.Background(), PurchaseInput{
		ProviderID:     providerID,
		ProductID:      productID,
		Quantity:       2,
		Unit:           models.UnitBox,
		SettlementType: "consignment",
	})
	if err != nil {
		t.Fatalf("RecordPurchase() error = %v", err)
	}

	if got := store.StockUnits(productID, models.LocationWarehouse); got != 48 {
		t.Errorf("warehouse stock = %d, want 48", got)
	}
	if got := store.ProviderBalance(providerID); got != 96000 {
		t.Errorf("provider balance = %v, want 96000", got)
	}
	if entries := store.CashflowEntries(); len(entries) != 0 {
		t.Errorf("cashflow entries = %d, want 0", len(entries))
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	providerID := store.AddProvider(models.Provider{Name: "Distribuidora X"})

	tests := []struct {
		name    string
		in      PurchaseInput
		wantErr error
	}{
		{"zero quantity", PurchaseInput{ProviderID: providerID, ProductID: productID, Quantity: 0, Unit: models.UnitEach, SettlementType: "cash"}, ErrInvalidInput},
		{"bad settlement type", PurchaseInput{ProviderID: providerID, ProductID: productID, Quantity: 1, Unit: models.UnitEach, SettlementType: "credit"}, ErrInvalidInput},
		{"unknown product", PurchaseInput{ProviderID: providerID, ProductID: "nope", Quantity: 1, Unit: models.UnitEach, SettlementType: "cash"}, ErrUnknownProduct},
		{"unknown provider", PurchaseInput{ProviderID: "nope", ProductID: productID, Quantity: 1, Unit: models.UnitEach, SettlementType: "cash"}, ErrUnknownProvider},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.RecordPurchase(context.Background(), tc.in); err != tc.wantErr {
				t.Fatalf("RecordPurchase() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if got := store.StockUnits(productID, models.LocationWarehouse); got != 0 {
		t.Errorf("warehouse stock = %d, want 0 after rejected purchases", got)
	}
	if got := len(store.Purchases()); got != 0 {
		t.Errorf("purchases = %d, want 0", got)
	}
}

func TestTransferToBar(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationWarehouse, 50)

	err := engine.TransferToBar(context.Background(), TransferInput{
		ProductID: productID,
		Quantity:  2,
		Unit:      models.UnitBox,
	})
	if err != nil {
		t.Fatalf("TransferToBar() error = %v", err)
	}
	if got := store.StockUnits(productID, models.LocationWarehouse); got != 2 {
		t.Errorf("warehouse stock = %d, want 2", got)
	}
	if got := store.StockUnits(productID, models.LocationBar); got != 48 {
		t.Errorf("bar stock = %d, want 48", got)
	}
}

func TestTransferToBarInsufficientStockIsAtomic(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationWarehouse, 10)

	err := engine.TransferToBar(context.Background(), TransferInput{
		ProductID: productID,
		Quantity:  1,
		Unit:      models.UnitBox,
	})
	if err != ErrInsufficientStock {
		t.Fatalf("TransferToBar() error = %v, want ErrInsufficientStock", err)
	}
	if got := store.StockUnits(productID, models.LocationWarehouse); got != 10 {
		t.Errorf("warehouse stock = %d, want 10 (unchanged)", got)
	}
	if got := store.StockUnits(productID, models.LocationBar); got != 0 {
		t.Errorf("bar stock = %d, want 0 (unchanged)", got)
	}
}

func TestOpenShift(t *testing.T) {
	engine, store := newTestEngine(t)
	workerID := store.AddWorker(models.Worker{Name: "Ana", BasePay: 30000, Active: true})

	shift, err := engine.OpenShift(context.Background(), workerID)
	if err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}
	if shift.Status != models.ShiftOpen {
		t.Errorf("shift status = %q, want %q", shift.Status, models.ShiftOpen)
	}
	if shift.BasePay != 30000 {
		t.Errorf("base pay snapshot = %v, want 30000", shift.BasePay)
	}

	otherID := store.AddWorker(models.Worker{Name: "Luis", Active: true})
	if _, err := engine.OpenShift(context.Background(), otherID); err != ErrShiftAlreadyOpen {
		t.Fatalf("second OpenShift() error = %v, want ErrShiftAlreadyOpen", err)
	}
	if _, err := engine.OpenShift(context.Background(), "nope"); err != ErrUnknownWorker {
		t.Fatalf("OpenShift(unknown) error = %v, want ErrUnknownWorker", err)
	}
}

func TestRecordSaleRequiresOpenShift(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationBar, 5)

	if _, err := engine.RecordSale(context.Background(), SaleInput{ProductID: productID, Units: 1}); err != ErrNoOpenShift {
		t.Fatalf("RecordSale() error = %v, want ErrNoOpenShift", err)
	}
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationBar, 5)
	workerID := store.AddWorker(models.Worker{Name: "Ana", Active: true})
	if _, err := engine.OpenShift(context.Background(), workerID); err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}

	if _, err := engine.RecordSale(context.Background(), SaleInput{ProductID: productID, Units: 10}); err != ErrInsufficientStock {
		t.Fatalf("RecordSale() error = %v, want ErrInsufficientStock", err)
	}
	if got := store.StockUnits(productID, models.LocationBar); got != 5 {
		t.Errorf("bar stock = %d, want 5 (unchanged)", got)
	}

	shift, _ := engine.ActiveShift(context.Background())
	sales, _ := engine.ShiftSales(context.Background(), shift.ID.Hex())
	if len(sales) != 0 {
		t.Errorf("sales = %d, want 0", len(sales))
	}
}

func TestRecordSale(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationBar, 5)
	workerID := store.AddWorker(models.Worker{Name: "Ana", Active: true})
	if _, err := engine.OpenShift(context.Background(), workerID); err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}

	sale, err := engine.RecordSale(context.Background(), SaleInput{ProductID: productID, Units: 3})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}
	if sale.TotalSale != 7500 {
		t.Errorf("total sale = %v, want 7500", sale.TotalSale)
	}
	if sale.TotalTokens != 3000 {
		t.Errorf("total tokens = %v, want 3000", sale.TotalTokens)
	}
	if got := store.StockUnits(productID, models.LocationBar); got != 2 {
		t.Errorf("bar stock = %d, want 2", got)
	}
}

func TestRecordLoan(t *testing.T) {
	engine, store := newTestEngine(t)
	workerID := store.AddWorker(models.Worker{Name: "Ana", Active: true})

	if _, err := engine.RecordLoan(context.Background(), LoanInput{Description: "advance", Amount: 500}); err != ErrNoOpenShift {
		t.Fatalf("RecordLoan() error = %v, want ErrNoOpenShift", err)
	}

	if _, err := engine.OpenShift(context.Background(), workerID); err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}
	if _, err := engine.RecordLoan(context.Background(), LoanInput{Description: "", Amount: 500}); err != ErrInvalidInput {
		t.Fatalf("RecordLoan(empty description) error = %v, want ErrInvalidInput", err)
	}
	if _, err := engine.RecordLoan(context.Background(), LoanInput{Description: "advance", Amount: -5}); err != ErrInvalidInput {
		t.Fatalf("RecordLoan(negative) error = %v, want ErrInvalidInput", err)
	}
	if _, err := engine.RecordLoan(context.Background(), LoanInput{Description: "advance", Amount: 2000}); err != nil {
		t.Fatalf("RecordLoan() error = %v", err)
	}
}

func TestCloseShiftSettlement(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationBar, 10)
	workerID := store.AddWorker(models.Worker{Name: "Ana", BasePay: 30000, Active: true})

	ctx := context.Background()
	shift, err := engine.OpenShift(ctx, workerID)
	if err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}
	// 5 units: gross 12500, tokens 5000
	if _, err := engine.RecordSale(ctx, SaleInput{ProductID: productID, Units: 5}); err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}
	if _, err := engine.RecordLoan(ctx, LoanInput{Description: "advance", Amount: 2000}); err != nil {
		t.Fatalf("RecordLoan() error = %v", err)
	}

	settlement, err := engine.CloseShift(ctx)
	if err != nil {
		t.Fatalf("CloseShift() error = %v", err)
	}
	if settlement.NetPayable != 33000 {
		t.Errorf("net payable = %v, want 33000", settlement.NetPayable)
	}
	if settlement.NetPayable != settlement.BasePay+settlement.TokenEarnings-settlement.LoansTotal {
		t.Errorf("net payable %v does not match basePay + tokens - loans", settlement.NetPayable)
	}
	if settlement.GrossRevenue != 12500 {
		t.Errorf("gross revenue = %v, want 12500", settlement.GrossRevenue)
	}

	closed, ok := store.Shift(shift.ID.Hex())
	if !ok {
		t.Fatalf("shift %s not found", shift.ID.Hex())
	}
	if closed.Status != models.ShiftClosed {
		t.Errorf("shift status = %q, want %q", closed.Status, models.ShiftClosed)
	}
	if closed.Summary == nil || closed.Summary.NetPayable != 33000 {
		t.Errorf("shift summary = %+v, want net payable 33000", closed.Summary)
	}

	entries := store.CashflowEntries()
	if len(entries) != 2 {
		t.Fatalf("cashflow entries = %d, want 2", len(entries))
	}
	var income, expense *models.CashflowEntry
	for i := range entries {
		switch entries[i].Type {
		case models.CashIncome:
			income = &entries[i]
		case models.CashExpense:
			expense = &entries[i]
		}
	}
	if income == nil || income.Amount != 12500 {
		t.Errorf("income entry = %+v, want 12500", income)
	}
	if expense == nil || expense.Amount != 33000 {
		t.Errorf("expense entry = %+v, want 33000", expense)
	}

	// Closing is terminal: a second close must fail and not duplicate the
	// settlement record.
	if _, err := engine.CloseShift(ctx); err != ErrNoOpenShift {
		t.Fatalf("second CloseShift() error = %v, want ErrNoOpenShift", err)
	}
	if got := len(store.WorkerSettlements()); got != 1 {
		t.Errorf("worker settlements = %d, want 1", got)
	}
	if _, err := engine.RecordSale(ctx, SaleInput{ProductID: productID, Units: 1}); err != ErrNoOpenShift {
		t.Errorf("RecordSale() after close error = %v, want ErrNoOpenShift", err)
	}
}

func TestCloseShiftNegativeNetPayable(t *testing.T) {
	engine, store := newTestEngine(t)
	workerID := store.AddWorker(models.Worker{Name: "Ana", BasePay: 1000, Active: true})

	ctx := context.Background()
	if _, err := engine.OpenShift(ctx, workerID); err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}
	// Loans over earnings are allowed; the shift just closes negative.
	if _, err := engine.RecordLoan(ctx, LoanInput{Description: "big advance", Amount: 5000}); err != nil {
		t.Fatalf("RecordLoan() error = %v", err)
	}

	settlement, err := engine.CloseShift(ctx)
	if err != nil {
		t.Fatalf("CloseShift() error = %v", err)
	}
	if settlement.NetPayable != -4000 {
		t.Errorf("net payable = %v, want -4000", settlement.NetPayable)
	}
	// No revenue and nothing payable: no cash entries at all.
	if entries := store.CashflowEntries(); len(entries) != 0 {
		t.Errorf("cashflow entries = %d, want 0", len(entries))
	}
}

func TestSettleProvider(t *testing.T) {
	engine, store := newTestEngine(t)
	providerID := store.AddProvider(models.Provider{Name: "Distribuidora X", PendingBalance: 96000})

	ctx := context.Background()
	settlement, err := engine.SettleProvider(ctx, providerID)
	if err != nil {
		t.Fatalf("SettleProvider() error = %v", err)
	}
	if settlement.AmountPaid != 96000 {
		t.Errorf("amount paid = %v, want 96000", settlement.AmountPaid)
	}
	if got := store.ProviderBalance(providerID); got != 0 {
		t.Errorf("provider balance = %v, want 0", got)
	}
	if got := len(store.ProviderSettlements()); got != 1 {
		t.Errorf("provider settlements = %d, want 1", got)
	}
	entries := store.CashflowEntries()
	if len(entries) != 1 || entries[0].Type != models.CashExpense || entries[0].Amount != 96000 {
		t.Errorf("cashflow entries = %+v, want one expense of 96000", entries)
	}

	if _, err := engine.SettleProvider(ctx, providerID); err != ErrNothingToSettle {
		t.Fatalf("second SettleProvider() error = %v, want ErrNothingToSettle", err)
	}
	if got := len(store.ProviderSettlements()); got != 1 {
		t.Errorf("provider settlements after retry = %d, want 1", got)
	}
}

func TestRecordManualEntry(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	entry, err := engine.RecordManualEntry(ctx, "user-1", models.ManualEntryInput{
		Type:        models.CashIncome,
		Amount:      5000,
		Description: "Opening float",
	})
	if err != nil {
		t.Fatalf("RecordManualEntry() error = %v", err)
	}
	if !entry.Manual || entry.UserID != "user-1" {
		t.Errorf("entry = %+v, want manual with user-1", entry)
	}
	if balance, _ := engine.CurrentCashBalance(ctx); balance != 5000 {
		t.Errorf("cash balance = %v, want 5000", balance)
	}

	for _, in := range []models.ManualEntryInput{
		{Type: "transfer", Amount: 10, Description: "x"},
		{Type: models.CashExpense, Amount: 0, Description: "x"},
		{Type: models.CashExpense, Amount: 10, Description: ""},
	} {
		if _, err := engine.RecordManualEntry(ctx, "user-1", in); err != ErrInvalidInput {
			t.Errorf("RecordManualEntry(%+v) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestCashBalanceMatchesSignedSum(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	providerID := store.AddProvider(models.Provider{Name: "Distribuidora X"})
	workerID := store.AddWorker(models.Worker{Name: "Ana", BasePay: 30000, Active: true})

	ctx := context.Background()
	if _, err := engine.RecordPurchase(ctx, PurchaseInput{ProviderID: providerID, ProductID: productID, Quantity: 2, Unit: models.UnitBox, SettlementType: "cash"}); err != nil {
		t.Fatalf("RecordPurchase() error = %v", err)
	}
	if err := engine.TransferToBar(ctx, TransferInput{ProductID: productID, Quantity: 1, Unit: models.UnitBox}); err != nil {
		t.Fatalf("TransferToBar() error = %v", err)
	}
	if _, err := engine.OpenShift(ctx, workerID); err != nil {
		t.Fatalf("OpenShift() error = %v", err)
	}
	if _, err := engine.RecordSale(ctx, SaleInput{ProductID: productID, Units: 10}); err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}
	if _, err := engine.CloseShift(ctx); err != nil {
		t.Fatalf("CloseShift() error = %v", err)
	}
	if _, err := engine.RecordManualEntry(ctx, "u", models.ManualEntryInput{Type: models.CashIncome, Amount: 1234, Description: "found in drawer"}); err != nil {
		t.Fatalf("RecordManualEntry() error = %v", err)
	}

	var sum float64
	for _, e := range store.CashflowEntries() {
		sum += e.Signed()
	}
	balance, err := engine.CurrentCashBalance(ctx)
	if err != nil {
		t.Fatalf("CurrentCashBalance() error = %v", err)
	}
	if balance != sum {
		t.Errorf("running balance = %v, signed sum = %v", balance, sum)
	}
}

func TestLowStockProducts(t *testing.T) {
	engine, store := newTestEngine(t)
	beer := seedBeer(store)
	water := store.AddProduct(models.Product{Name: "Water", SalePrice: 1000, PurchaseCost: 500, Active: true})
	store.SetStock(beer, models.LocationBar, 3)
	store.SetStock(water, models.LocationBar, 25)

	low, err := engine.LowStockProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("LowStockProducts() error = %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("low stock products = %d, want 1", len(low))
	}
	if low[0].ProductID != beer || low[0].Units != 3 {
		t.Errorf("low stock = %+v, want beer with 3 units", low[0])
	}
}

func TestTotalProviderDebt(t *testing.T) {
	engine, store := newTestEngine(t)
	store.AddProvider(models.Provider{Name: "A", PendingBalance: 1000})
	store.AddProvider(models.Provider{Name: "B", PendingBalance: 2500})

	debt, err := engine.TotalProviderDebt(context.Background())
	if err != nil {
		t.Fatalf("TotalProviderDebt() error = %v", err)
	}
	if debt != 3500 {
		t.Errorf("total provider debt = %v, want 3500", debt)
	}
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	engine, store := newTestEngine(t)
	productID := seedBeer(store)
	store.SetStock(productID, models.LocationWarehouse, 10)

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- engine.TransferToBar(context.Background(), TransferInput{
				ProductID: productID,
				Quantity:  1,
				Unit:      models.UnitEach,
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch err {
		case nil:
			ok++
		case ErrInsufficientStock:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 10 || insufficient != 10 {
		t.Errorf("transfers ok=%d insufficient=%d, want 10/10", ok, insufficient)
	}
	if got := store.StockUnits(productID, models.LocationWarehouse); got != 0 {
		t.Errorf("warehouse stock = %d, want 0", got)
	}
	if got := store.StockUnits(productID, models.LocationBar); got != 10 {
		t.Errorf("bar stock = %d, want 10", got)
	}
}
