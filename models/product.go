package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LocationWarehouse = "warehouse"
	LocationBar       = "bar"
)

const (
	UnitEach   = "each"
	UnitBox    = "box"
	UnitBasket = "basket"
)

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name" binding:"required"`
	SalePrice      float64            `bson:"sale_price" json:"sale_price" binding:"required"`
	PurchaseCost   float64            `bson:"purchase_cost" json:"purchase_cost" binding:"required"`
	TokenPrice     float64            `bson:"token_price" json:"token_price"`
	UnitsPerBox    int64              `bson:"units_per_box" json:"units_per_box"`
	UnitsPerBasket int64              `bson:"units_per_basket" json:"units_per_basket"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type UpdateProduct struct {
	Name           string   `json:"name,omitempty"`
	SalePrice      *float64 `json:"sale_price,omitempty"`
	PurchaseCost   *float64 `json:"purchase_cost,omitempty"`
	TokenPrice     *float64 `json:"token_price,omitempty"`
	UnitsPerBox    *int64   `json:"units_per_box,omitempty"`
	UnitsPerBasket *int64   `json:"units_per_basket,omitempty"`
	Active         *bool    `json:"active,omitempty"`
}

// StockLevel is one unit counter per product and location. The units field
// never goes below zero; every debit re-reads the document inside the same
// transaction that writes it.
type StockLevel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProductID string             `bson:"product_id" json:"product_id"`
	Location  string             `bson:"location" json:"location"`
	Units     int64              `bson:"units" json:"units"`
}

type Purchase struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProviderID     string             `bson:"provider_id" json:"provider_id"`
	ProductID      string             `bson:"product_id" json:"product_id"`
	ProductName    string             `bson:"product_name" json:"product_name"`
	SettlementType string             `bson:"settlement_type" json:"settlement_type"` // "cash" or "consignment"
	Units          int64              `bson:"units" json:"units"`
	TotalCost      float64            `bson:"total_cost" json:"total_cost"`
	Date           time.Time          `bson:"date" json:"date"`
}
