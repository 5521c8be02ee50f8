package ledger

import (
	"context"
	"errors"
	"time"

	"backend/config"
	"backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter document ids. The active-shift pointer makes the one-open-shift
// rule a hard constraint instead of a query-derived one, and the cash
// balance counter keeps the balance exact over full history.
const (
	counterActiveShift = "active_shift"
	counterCashBalance = "cash_balance"
)

type mongoStore struct{}

// NewMongoStore returns the production Store backed by the collections in
// config. Transactions require the deployment to be a replica set.
func NewMongoStore() Store {
	return &mongoStore{}
}

func (s *mongoStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	session, err := config.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return err
		}
		if err := fn(&mongoTx{ctx: sc}); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}
		return session.CommitTransaction(sc)
	})
	return wrapTxnErr(err)
}

// wrapTxnErr maps optimistic-concurrency aborts onto ErrTxnConflict. The
// engine reports them instead of retrying.
func wrapTxnErr(err error) error {
	if err == nil {
		return nil
	}
	var le interface{ HasErrorLabel(string) bool }
	if errors.As(err, &le) {
		if le.HasErrorLabel("TransientTransactionError") || le.HasErrorLabel("UnknownTransactionCommitResult") {
			return ErrTxnConflict
		}
	}
	return err
}

type mongoTx struct {
	ctx mongo.SessionContext
}

func (t *mongoTx) Product(id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUnknownProduct
	}
	var p models.Product
	if err := config.ProductCollection.FindOne(t.ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}
	return &p, nil
}

func (t *mongoTx) Provider(id string) (*models.Provider, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUnknownProvider
	}
	var p models.Provider
	if err := config.ProviderCollection.FindOne(t.ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownProvider
		}
		return nil, err
	}
	return &p, nil
}

func (t *mongoTx) Worker(id string) (*models.Worker, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUnknownWorker
	}
	var w models.Worker
	if err := config.WorkerCollection.FindOne(t.ctx, bson.M{"_id": oid}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownWorker
		}
		return nil, err
	}
	return &w, nil
}

func (t *mongoTx) Stock(productID, location string) (int64, error) {
	return readStock(t.ctx, productID, location)
}

func (t *mongoTx) AdjustStock(productID, location string, delta int64) error {
	current, err := readStock(t.ctx, productID, location)
	if err != nil {
		return err
	}
	if current+delta < 0 {
		return ErrInsufficientStock
	}
	_, err = config.StockCollection.UpdateOne(
		t.ctx,
		bson.M{"product_id": productID, "location": location},
		bson.M{"$set": bson.M{"units": current + delta}},
		upsert(),
	)
	return err
}

func (t *mongoTx) EnsureStockLevels(productID string) error {
	for _, location := range []string{models.LocationWarehouse, models.LocationBar} {
		_, err := config.StockCollection.UpdateOne(
			t.ctx,
			bson.M{"product_id": productID, "location": location},
			bson.M{"$setOnInsert": bson.M{"units": int64(0)}},
			upsert(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *mongoTx) InsertPurchase(p *models.Purchase) error {
	p.ID = primitive.NewObjectID()
	_, err := config.PurchaseCollection.InsertOne(t.ctx, p)
	return err
}

func (t *mongoTx) AddProviderBalance(providerID string, amount float64) error {
	oid, err := primitive.ObjectIDFromHex(providerID)
	if err != nil {
		return ErrUnknownProvider
	}
	_, err = config.ProviderCollection.UpdateOne(t.ctx, bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"pending_balance": amount}})
	return err
}

func (t *mongoTx) ResetProviderBalance(providerID string) error {
	oid, err := primitive.ObjectIDFromHex(providerID)
	if err != nil {
		return ErrUnknownProvider
	}
	_, err = config.ProviderCollection.UpdateOne(t.ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"pending_balance": float64(0)}})
	return err
}

func (t *mongoTx) InsertCashflow(e *models.CashflowEntry) error {
	e.ID = primitive.NewObjectID()
	if _, err := config.CashflowCollection.InsertOne(t.ctx, e); err != nil {
		return err
	}
	_, err := config.CounterCollection.UpdateOne(
		t.ctx,
		bson.M{"_id": counterCashBalance},
		bson.M{"$inc": bson.M{"balance": e.Signed()}},
		upsert(),
	)
	return err
}

func (t *mongoTx) ActiveShift() (*models.Shift, error) {
	return activeShift(t.ctx)
}

func (t *mongoTx) InsertShift(s *models.Shift) error {
	current, err := activeShiftID(t.ctx)
	if err != nil {
		return err
	}
	if current != "" {
		return ErrShiftAlreadyOpen
	}
	s.ID = primitive.NewObjectID()
	if _, err := config.ShiftCollection.InsertOne(t.ctx, s); err != nil {
		return err
	}
	_, err = config.CounterCollection.UpdateOne(
		t.ctx,
		bson.M{"_id": counterActiveShift},
		bson.M{"$set": bson.M{"shift_id": s.ID.Hex()}},
		upsert(),
	)
	return err
}

func (t *mongoTx) CloseShift(shiftID string, end time.Time, summary models.ShiftSummary) error {
	oid, err := primitive.ObjectIDFromHex(shiftID)
	if err != nil {
		return ErrNoOpenShift
	}
	_, err = config.ShiftCollection.UpdateOne(t.ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":  models.ShiftClosed,
		"end":     end,
		"summary": summary,
	}})
	if err != nil {
		return err
	}
	_, err = config.CounterCollection.UpdateOne(
		t.ctx,
		bson.M{"_id": counterActiveShift},
		bson.M{"$set": bson.M{"shift_id": ""}},
		upsert(),
	)
	return err
}

func (t *mongoTx) Sales(shiftID string) ([]models.Sale, error) {
	return shiftSales(t.ctx, shiftID)
}

func (t *mongoTx) Loans(shiftID string) ([]models.Loan, error) {
	return shiftLoans(t.ctx, shiftID)
}

func (t *mongoTx) InsertSale(s *models.Sale) error {
	s.ID = primitive.NewObjectID()
	_, err := config.SaleCollection.InsertOne(t.ctx, s)
	return err
}

func (t *mongoTx) InsertLoan(l *models.Loan) error {
	l.ID = primitive.NewObjectID()
	_, err := config.LoanCollection.InsertOne(t.ctx, l)
	return err
}

func (t *mongoTx) InsertProviderSettlement(s *models.ProviderSettlement) error {
	s.ID = primitive.NewObjectID()
	_, err := config.ProviderSettlementCollection.InsertOne(t.ctx, s)
	return err
}

func (t *mongoTx) InsertWorkerSettlement(s *models.WorkerSettlement) error {
	s.ID = primitive.NewObjectID()
	_, err := config.WorkerSettlementCollection.InsertOne(t.ctx, s)
	return err
}

// --- read side (non-transactional, presentation only) ---

func (s *mongoStore) ActiveShift(ctx context.Context) (*models.Shift, error) {
	return activeShift(ctx)
}

func (s *mongoStore) ShiftSales(ctx context.Context, shiftID string) ([]models.Sale, error) {
	return shiftSales(ctx, shiftID)
}

func (s *mongoStore) ShiftLoans(ctx context.Context, shiftID string) ([]models.Loan, error) {
	return shiftLoans(ctx, shiftID)
}

func (s *mongoStore) CashBalance(ctx context.Context) (float64, error) {
	var doc struct {
		Balance float64 `bson:"balance"`
	}
	err := config.CounterCollection.FindOne(ctx, bson.M{"_id": counterCashBalance}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Balance, nil
}

func (s *mongoStore) TotalProviderDebt(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$pending_balance"}}},
		}}},
	}
	cursor, err := config.ProviderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (s *mongoStore) LowStock(ctx context.Context, location string, threshold int64) ([]LowStockProduct, error) {
	cursor, err := config.StockCollection.Find(ctx, bson.M{
		"location": location,
		"units":    bson.M{"$lt": threshold},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var levels []models.StockLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, err
	}

	var low []LowStockProduct
	for _, level := range levels {
		name := level.ProductID
		if oid, err := primitive.ObjectIDFromHex(level.ProductID); err == nil {
			var p models.Product
			if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err == nil {
				name = p.Name
			}
		}
		low = append(low, LowStockProduct{ProductID: level.ProductID, Name: name, Units: level.Units})
	}
	return low, nil
}

// --- shared helpers ---

func readStock(ctx context.Context, productID, location string) (int64, error) {
	var level models.StockLevel
	err := config.StockCollection.FindOne(ctx, bson.M{"product_id": productID, "location": location}).Decode(&level)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.Units, nil
}

func activeShiftID(ctx context.Context) (string, error) {
	var doc struct {
		ShiftID string `bson:"shift_id"`
	}
	err := config.CounterCollection.FindOne(ctx, bson.M{"_id": counterActiveShift}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.ShiftID, nil
}

func activeShift(ctx context.Context) (*models.Shift, error) {
	id, err := activeShiftID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var shift models.Shift
	if err := config.ShiftCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&shift); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func shiftSales(ctx context.Context, shiftID string) ([]models.Sale, error) {
	cursor, err := config.SaleCollection.Find(ctx, bson.M{"shift_id": shiftID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func shiftLoans(ctx context.Context, shiftID string) ([]models.Loan, error) {
	cursor, err := config.LoanCollection.Find(ctx, bson.M{"shift_id": shiftID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func upsert() *options.UpdateOptions {
	return options.Update().SetUpsert(true)
}
