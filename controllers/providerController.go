package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateProvider(c *gin.Context) {
	var provider models.Provider
	if err := c.ShouldBindJSON(&provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	provider.ID = primitive.NewObjectID()
	provider.PendingBalance = 0

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := config.ProviderCollection.InsertOne(ctx, provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating provider"})
		return
	}

	c.JSON(http.StatusCreated, provider)
}

func GetProviders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.ProviderCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching providers"})
		return
	}
	providers := []models.Provider{}
	if err := cursor.All(ctx, &providers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding providers"})
		return
	}

	c.JSON(http.StatusOK, providers)
}

// EditProvider updates name, contact and the consignment flag. The pending
// balance is never writable from the API; only purchases and settlements
// move it.
func EditProvider(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider id"})
		return
	}

	var input models.UpdateProvider
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if input.Name != "" {
		update["name"] = input.Name
	}
	if input.Contact != "" {
		update["contact"] = input.Contact
	}
	if input.Consignment != nil {
		update["consignment"] = *input.Consignment
	}
	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.ProviderCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating provider"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}

	var provider models.Provider
	if err := config.ProviderCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching updated provider"})
		return
	}

	c.JSON(http.StatusOK, provider)
}

// SettleProvider pays off the provider's whole pending balance in one
// transaction: settlement record, balance reset, cash expense.
func SettleProvider(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settlement, err := engine.SettleProvider(ctx, c.Param("id"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, settlement)
}

func GetProviderSettlements(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if id := c.Query("provider_id"); id != "" {
		filter["provider_id"] = id
	}
	cursor, err := config.ProviderSettlementCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"date": -1}).SetLimit(50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching settlements"})
		return
	}
	settlements := []models.ProviderSettlement{}
	if err := cursor.All(ctx, &settlements); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding settlements"})
		return
	}

	c.JSON(http.StatusOK, settlements)
}
