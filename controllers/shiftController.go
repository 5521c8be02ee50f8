package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/ledger"

	"github.com/gin-gonic/gin"
)

type openShiftInput struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// GetActiveShift returns the open shift with its sales and loans so far, or
// 200 with a null shift when nothing is open.
func GetActiveShift(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shift, err := engine.ActiveShift(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching active shift"})
		return
	}
	if shift == nil {
		c.JSON(http.StatusOK, gin.H{"shift": nil})
		return
	}

	sales, err := engine.ShiftSales(ctx, shift.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching shift sales"})
		return
	}
	loans, err := engine.ShiftLoans(ctx, shift.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching shift loans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shift": shift, "sales": sales, "loans": loans})
}

func OpenShift(c *gin.Context) {
	var input openShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shift, err := engine.OpenShift(ctx, input.WorkerID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, shift)
}

func RecordSale(c *gin.Context) {
	var input ledger.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sale, err := engine.RecordSale(ctx, input)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func RecordLoan(c *gin.Context) {
	var input ledger.LoanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	loan, err := engine.RecordLoan(ctx, input)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan)
}

// CloseShift settles the open shift: totals frozen, worker settlement
// written, cash entries emitted, all in one transaction.
func CloseShift(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settlement, err := engine.CloseShift(ctx)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, settlement)
}
