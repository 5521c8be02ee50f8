package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client
	DB     *mongo.Database

	UserCollection               *mongo.Collection
	ProductCollection            *mongo.Collection
	ProviderCollection           *mongo.Collection
	WorkerCollection             *mongo.Collection
	PurchaseCollection           *mongo.Collection
	ShiftCollection              *mongo.Collection
	SaleCollection               *mongo.Collection
	LoanCollection               *mongo.Collection
	ProviderSettlementCollection *mongo.Collection
	WorkerSettlementCollection   *mongo.Collection
	CashflowCollection           *mongo.Collection
	StockCollection              *mongo.Collection
	CounterCollection            *mongo.Collection
)

func ConnectDatabase() {
	client, err := mongo.NewClient(options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "barpos"
	}

	Client = client
	db := client.Database(dbName)
	DB = db

	UserCollection = db.Collection("users")
	ProductCollection = db.Collection("products")
	ProviderCollection = db.Collection("providers")
	WorkerCollection = db.Collection("workers")
	PurchaseCollection = db.Collection("purchases")
	ShiftCollection = db.Collection("shifts")
	SaleCollection = db.Collection("sales")
	LoanCollection = db.Collection("loans")
	ProviderSettlementCollection = db.Collection("providerSettlements")
	WorkerSettlementCollection = db.Collection("workerSettlements")
	CashflowCollection = db.Collection("cashflow_entries")
	StockCollection = db.Collection("stock")
	CounterCollection = db.Collection("counters")

	log.Println("Connected to MongoDB")
}
