package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Worker struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name    string             `bson:"name" json:"name" binding:"required"`
	BasePay float64            `bson:"base_pay" json:"base_pay"`
	Active  bool               `bson:"active" json:"active"`
}

type UpdateWorker struct {
	Name    string   `json:"name,omitempty"`
	BasePay *float64 `json:"base_pay,omitempty"`
	Active  *bool    `json:"active,omitempty"`
}

// WorkerSettlement is written once per closed shift.
type WorkerSettlement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WorkerID      string             `bson:"worker_id" json:"worker_id"`
	WorkerName    string             `bson:"worker_name" json:"worker_name"`
	ShiftID       string             `bson:"shift_id" json:"shift_id"`
	GrossRevenue  float64            `bson:"gross_revenue" json:"gross_revenue"`
	TokenEarnings float64            `bson:"token_earnings" json:"token_earnings"`
	LoansTotal    float64            `bson:"loans_total" json:"loans_total"`
	BasePay       float64            `bson:"base_pay" json:"base_pay"`
	NetPayable    float64            `bson:"net_payable" json:"net_payable"`
	Date          time.Time          `bson:"date" json:"date"`
}
