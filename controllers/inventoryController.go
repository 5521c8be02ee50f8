package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/config"
	"backend/ledger"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InventoryRow is one product with both its stock levels, as shown on the
// inventory screen.
type InventoryRow struct {
	Product   models.Product `json:"product"`
	Warehouse int64          `json:"warehouse"`
	Bar       int64          `json:"bar"`
}

// GetInventory joins every product with its warehouse and bar levels.
func GetInventory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.ProductCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding products"})
		return
	}

	stockCursor, err := config.StockCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching stock"})
		return
	}
	levels := []models.StockLevel{}
	if err := stockCursor.All(ctx, &levels); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding stock"})
		return
	}

	byProduct := make(map[string]map[string]int64, len(levels))
	for _, l := range levels {
		if byProduct[l.ProductID] == nil {
			byProduct[l.ProductID] = make(map[string]int64, 2)
		}
		byProduct[l.ProductID][l.Location] = l.Units
	}

	rows := make([]InventoryRow, 0, len(products))
	for _, p := range products {
		s := byProduct[p.ID.Hex()]
		rows = append(rows, InventoryRow{
			Product:   p,
			Warehouse: s[models.LocationWarehouse],
			Bar:       s[models.LocationBar],
		})
	}

	c.JSON(http.StatusOK, rows)
}

// RecordPurchase books a supplier purchase: stock credit plus either a cash
// expense or a growing provider balance, one transaction.
func RecordPurchase(c *gin.Context) {
	var input ledger.PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	purchase, err := engine.RecordPurchase(ctx, input)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

func GetPurchases(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.PurchaseCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"date": -1}).SetLimit(50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching purchases"})
		return
	}
	purchases := []models.Purchase{}
	if err := cursor.All(ctx, &purchases); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding purchases"})
		return
	}

	c.JSON(http.StatusOK, purchases)
}

// TransferToBar moves stock from warehouse to bar.
func TransferToBar(c *gin.Context) {
	var input ledger.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := engine.TransferToBar(ctx, input); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer completed"})
}
