package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

type Shift struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WorkerID   string             `bson:"worker_id" json:"worker_id"`
	WorkerName string             `bson:"worker_name" json:"worker_name"`
	BasePay    float64            `bson:"base_pay" json:"base_pay"` // snapshot taken at open time
	Status     string             `bson:"status" json:"status"`
	Start      time.Time          `bson:"start" json:"start"`
	End        time.Time          `bson:"end,omitempty" json:"end,omitempty"`
	Summary    *ShiftSummary      `bson:"summary,omitempty" json:"summary,omitempty"`
}

// ShiftSummary is computed exactly once, at close time, from the shift's
// sale and loan records.
type ShiftSummary struct {
	GrossRevenue  float64 `bson:"gross_revenue" json:"gross_revenue"`
	TokenEarnings float64 `bson:"token_earnings" json:"token_earnings"`
	LoansTotal    float64 `bson:"loans_total" json:"loans_total"`
	NetPayable    float64 `bson:"net_payable" json:"net_payable"`
}

type Sale struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ShiftID       string             `bson:"shift_id" json:"shift_id"`
	ProductID     string             `bson:"product_id" json:"product_id"`
	ProductName   string             `bson:"product_name" json:"product_name"`
	Units         int64              `bson:"units" json:"units"`
	UnitSalePrice float64            `bson:"unit_sale_price" json:"unit_sale_price"`
	UnitTokenPrice float64           `bson:"unit_token_price" json:"unit_token_price"`
	TotalSale     float64            `bson:"total_sale" json:"total_sale"`
	TotalTokens   float64            `bson:"total_tokens" json:"total_tokens"`
	Date          time.Time          `bson:"date" json:"date"`
}

type Loan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ShiftID     string             `bson:"shift_id" json:"shift_id"`
	Description string             `bson:"description" json:"description"`
	Amount      float64            `bson:"amount" json:"amount"`
	Date        time.Time          `bson:"date" json:"date"`
}
