package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCashflow returns the 50 most recent entries plus the running balance.
// The balance comes from the transactional counter, not from summing the
// window, so it stays correct however long the history grows.
func GetCashflow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.CashflowCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"date": -1}).SetLimit(50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cashflow"})
		return
	}
	entries := []models.CashflowEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding cashflow"})
		return
	}

	balance, err := engine.CurrentCashBalance(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "balance": balance})
}

// RecordManualEntry appends a manual income or expense tagged with the
// acting user.
func RecordManualEntry(c *gin.Context) {
	var input models.ManualEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, err := engine.RecordManualEntry(ctx, c.GetString("userID"), input)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}
