package ledger

import (
	"context"
	"sync"
	"time"

	"backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore is a mutex-guarded in-memory Store used by the engine tests and
// for local development without a replica set. Transactions take a snapshot
// up front and restore it when the callback fails, so aborted operations
// leave no partial state — the same guarantee the Mongo store gets from
// session transactions.
type MemStore struct {
	mu sync.Mutex

	products  map[string]models.Product
	providers map[string]models.Provider
	workers   map[string]models.Worker
	stock     map[string]int64 // productID + "/" + location

	purchases           []models.Purchase
	shifts              map[string]models.Shift
	sales               []models.Sale
	loans               []models.Loan
	providerSettlements []models.ProviderSettlement
	workerSettlements   []models.WorkerSettlement
	cashflow            []models.CashflowEntry

	balance       float64
	activeShiftID string
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:  map[string]models.Product{},
		providers: map[string]models.Provider{},
		workers:   map[string]models.Worker{},
		stock:     map[string]int64{},
		shifts:    map[string]models.Shift{},
	}
}

func stockKey(productID, location string) string {
	return productID + "/" + location
}

// --- seed helpers ---

func (m *MemStore) AddProduct(p models.Product) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	id := p.ID.Hex()
	m.products[id] = p
	m.stock[stockKey(id, models.LocationWarehouse)] = 0
	m.stock[stockKey(id, models.LocationBar)] = 0
	return id
}

func (m *MemStore) AddProvider(p models.Provider) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	id := p.ID.Hex()
	m.providers[id] = p
	return id
}

func (m *MemStore) AddWorker(w models.Worker) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	id := w.ID.Hex()
	m.workers[id] = w
	return id
}

func (m *MemStore) SetStock(productID, location string, units int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[stockKey(productID, location)] = units
}

// --- inspection helpers ---

func (m *MemStore) StockUnits(productID, location string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[stockKey(productID, location)]
}

func (m *MemStore) ProviderBalance(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.providers[id].PendingBalance
}

func (m *MemStore) CashflowEntries() []models.CashflowEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CashflowEntry(nil), m.cashflow...)
}

func (m *MemStore) Purchases() []models.Purchase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Purchase(nil), m.purchases...)
}

func (m *MemStore) WorkerSettlements() []models.WorkerSettlement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.WorkerSettlement(nil), m.workerSettlements...)
}

func (m *MemStore) ProviderSettlements() []models.ProviderSettlement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProviderSettlement(nil), m.providerSettlements...)
}

func (m *MemStore) Shift(id string) (models.Shift, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	return s, ok
}

// --- Store ---

func (m *MemStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memTx{store: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	providers map[string]models.Provider
	stock     map[string]int64
	shifts    map[string]models.Shift

	purchases           int
	sales               int
	loans               int
	providerSettlements int
	workerSettlements   int
	cashflow            int

	balance       float64
	activeShiftID string
}

func (m *MemStore) snapshot() memSnapshot {
	providers := make(map[string]models.Provider, len(m.providers))
	for k, v := range m.providers {
		providers[k] = v
	}
	stock := make(map[string]int64, len(m.stock))
	for k, v := range m.stock {
		stock[k] = v
	}
	shifts := make(map[string]models.Shift, len(m.shifts))
	for k, v := range m.shifts {
		shifts[k] = v
	}
	return memSnapshot{
		providers:           providers,
		stock:               stock,
		shifts:              shifts,
		purchases:           len(m.purchases),
		sales:               len(m.sales),
		loans:               len(m.loans),
		providerSettlements: len(m.providerSettlements),
		workerSettlements:   len(m.workerSettlements),
		cashflow:            len(m.cashflow),
		balance:             m.balance,
		activeShiftID:       m.activeShiftID,
	}
}

func (m *MemStore) restore(snap memSnapshot) {
	m.providers = snap.providers
	m.stock = snap.stock
	m.shifts = snap.shifts
	m.purchases = m.purchases[:snap.purchases]
	m.sales = m.sales[:snap.sales]
	m.loans = m.loans[:snap.loans]
	m.providerSettlements = m.providerSettlements[:snap.providerSettlements]
	m.workerSettlements = m.workerSettlements[:snap.workerSettlements]
	m.cashflow = m.cashflow[:snap.cashflow]
	m.balance = snap.balance
	m.activeShiftID = snap.activeShiftID
}

func (m *MemStore) ActiveShift(ctx context.Context) (*models.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeShiftLocked()
}

func (m *MemStore) activeShiftLocked() (*models.Shift, error) {
	if m.activeShiftID == "" {
		return nil, nil
	}
	s, ok := m.shifts[m.activeShiftID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemStore) ShiftSales(ctx context.Context, shiftID string) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.salesLocked(shiftID), nil
}

func (m *MemStore) ShiftLoans(ctx context.Context, shiftID string) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loansLocked(shiftID), nil
}

func (m *MemStore) salesLocked(shiftID string) []models.Sale {
	var out []models.Sale
	for _, s := range m.sales {
		if s.ShiftID == shiftID {
			out = append(out, s)
		}
	}
	return out
}

func (m *MemStore) loansLocked(shiftID string) []models.Loan {
	var out []models.Loan
	for _, l := range m.loans {
		if l.ShiftID == shiftID {
			out = append(out, l)
		}
	}
	return out
}

func (m *MemStore) CashBalance(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

func (m *MemStore) TotalProviderDebt(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, p := range m.providers {
		total += p.PendingBalance
	}
	return total, nil
}

func (m *MemStore) LowStock(ctx context.Context, location string, threshold int64) ([]LowStockProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var low []LowStockProduct
	for id, p := range m.products {
		units := m.stock[stockKey(id, location)]
		if units < threshold {
			low = append(low, LowStockProduct{ProductID: id, Name: p.Name, Units: units})
		}
	}
	return low, nil
}

// --- Tx ---

type memTx struct {
	store *MemStore
}

func (t *memTx) Product(id string) (*models.Product, error) {
	p, ok := t.store.products[id]
	if !ok {
		return nil, ErrUnknownProduct
	}
	return &p, nil
}

func (t *memTx) Provider(id string) (*models.Provider, error) {
	p, ok := t.store.providers[id]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return &p, nil
}

func (t *memTx) Worker(id string) (*models.Worker, error) {
	w, ok := t.store.workers[id]
	if !ok {
		return nil, ErrUnknownWorker
	}
	return &w, nil
}

func (t *memTx) Stock(productID, location string) (int64, error) {
	return t.store.stock[stockKey(productID, location)], nil
}

func (t *memTx) AdjustStock(productID, location string, delta int64) error {
	key := stockKey(productID, location)
	current := t.store.stock[key]
	if current+delta < 0 {
		return ErrInsufficientStock
	}
	t.store.stock[key] = current + delta
	return nil
}

func (t *memTx) EnsureStockLevels(productID string) error {
	for _, location := range []string{models.LocationWarehouse, models.LocationBar} {
		key := stockKey(productID, location)
		if _, ok := t.store.stock[key]; !ok {
			t.store.stock[key] = 0
		}
	}
	return nil
}

func (t *memTx) InsertPurchase(p *models.Purchase) error {
	p.ID = primitive.NewObjectID()
	t.store.purchases = append(t.store.purchases, *p)
	return nil
}

func (t *memTx) AddProviderBalance(providerID string, amount float64) error {
	p, ok := t.store.providers[providerID]
	if !ok {
		return ErrUnknownProvider
	}
	p.PendingBalance += amount
	t.store.providers[providerID] = p
	return nil
}

func (t *memTx) ResetProviderBalance(providerID string) error {
	p, ok := t.store.providers[providerID]
	if !ok {
		return ErrUnknownProvider
	}
	p.PendingBalance = 0
	t.store.providers[providerID] = p
	return nil
}

func (t *memTx) InsertCashflow(e *models.CashflowEntry) error {
	e.ID = primitive.NewObjectID()
	t.store.cashflow = append(t.store.cashflow, *e)
	t.store.balance += e.Signed()
	return nil
}

func (t *memTx) ActiveShift() (*models.Shift, error) {
	return t.store.activeShiftLocked()
}

func (t *memTx) InsertShift(s *models.Shift) error {
	if t.store.activeShiftID != "" {
		return ErrShiftAlreadyOpen
	}
	s.ID = primitive.NewObjectID()
	id := s.ID.Hex()
	t.store.shifts[id] = *s
	t.store.activeShiftID = id
	return nil
}

func (t *memTx) CloseShift(shiftID string, end time.Time, summary models.ShiftSummary) error {
	s, ok := t.store.shifts[shiftID]
	if !ok {
		return ErrNoOpenShift
	}
	s.Status = models.ShiftClosed
	s.End = end
	s.Summary = &summary
	t.store.shifts[shiftID] = s
	t.store.activeShiftID = ""
	return nil
}

func (t *memTx) Sales(shiftID string) ([]models.Sale, error) {
	return t.store.salesLocked(shiftID), nil
}

func (t *memTx) Loans(shiftID string) ([]models.Loan, error) {
	return t.store.loansLocked(shiftID), nil
}

func (t *memTx) InsertSale(s *models.Sale) error {
	s.ID = primitive.NewObjectID()
	t.store.sales = append(t.store.sales, *s)
	return nil
}

func (t *memTx) InsertLoan(l *models.Loan) error {
	l.ID = primitive.NewObjectID()
	t.store.loans = append(t.store.loans, *l)
	return nil
}

func (t *memTx) InsertProviderSettlement(s *models.ProviderSettlement) error {
	s.ID = primitive.NewObjectID()
	t.store.providerSettlements = append(t.store.providerSettlements, *s)
	return nil
}

func (t *memTx) InsertWorkerSettlement(s *models.WorkerSettlement) error {
	s.ID = primitive.NewObjectID()
	t.store.workerSettlements = append(t.store.workerSettlements, *s)
	return nil
}
