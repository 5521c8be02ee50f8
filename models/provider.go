package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Provider struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name" binding:"required"`
	Contact        string             `bson:"contact" json:"contact"`
	Consignment    bool               `bson:"consignment" json:"consignment"`
	PendingBalance float64            `bson:"pending_balance" json:"pending_balance"`
}

type UpdateProvider struct {
	Name        string `json:"name,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Consignment *bool  `json:"consignment,omitempty"`
}

// ProviderSettlement freezes the moment a supplier debt was paid off.
type ProviderSettlement struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProviderID   string             `bson:"provider_id" json:"provider_id"`
	ProviderName string             `bson:"provider_name" json:"provider_name"`
	AmountPaid   float64            `bson:"amount_paid" json:"amount_paid"`
	Date         time.Time          `bson:"date" json:"date"`
}
