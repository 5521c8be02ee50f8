package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/utils"

	"github.com/gin-gonic/gin"
)

// Dashboard aggregates the figures the landing screen shows: cash on hand,
// revenue of the running shift, what is owed to suppliers and which bar
// products are under the alert threshold.
func Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	balance, err := engine.CurrentCashBalance(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cash balance"})
		return
	}

	providerDebt, err := engine.TotalProviderDebt(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching provider debt"})
		return
	}

	var shiftRevenue, shiftTokens float64
	shift, err := engine.ActiveShift(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching active shift"})
		return
	}
	if shift != nil {
		sales, err := engine.ShiftSales(ctx, shift.ID.Hex())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching shift sales"})
			return
		}
		for _, s := range sales {
			shiftRevenue += s.TotalSale
			shiftTokens += s.TotalTokens
		}
	}

	threshold := utils.LowStockThreshold()
	lowStock, err := engine.LowStockProducts(ctx, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching low stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cash_balance":        balance,
		"provider_debt":       providerDebt,
		"active_shift":        shift,
		"shift_revenue":       shiftRevenue,
		"shift_tokens":        shiftTokens,
		"low_stock":           lowStock,
		"low_stock_threshold": threshold,
	})
}
