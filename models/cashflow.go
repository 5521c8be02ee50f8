package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CashIncome  = "income"
	CashExpense = "expense"
)

// CashflowEntry is append-only. Amount is always positive; the sign comes
// from Type when the balance is summed.
type CashflowEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Amount      float64            `bson:"amount" json:"amount"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	Manual      bool               `bson:"manual,omitempty" json:"manual,omitempty"`
	UserID      string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
}

// Signed returns the entry's contribution to the cash balance.
func (e CashflowEntry) Signed() float64 {
	if e.Type == CashIncome {
		return e.Amount
	}
	return -e.Amount
}

type ManualEntryInput struct {
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required"`
}
