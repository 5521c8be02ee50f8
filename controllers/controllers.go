package controllers

import (
	"net/http"

	"backend/ledger"

	"github.com/gin-gonic/gin"
)

var engine *ledger.Engine

// Init wires the ledger engine used by every controller. Called once from
// main after the database connection is up.
func Init(e *ledger.Engine) {
	engine = e
}

// respondLedgerError maps engine error kinds onto HTTP statuses.
func respondLedgerError(c *gin.Context, err error) {
	switch err {
	case ledger.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case ledger.ErrUnknownProduct, ledger.ErrUnknownProvider, ledger.ErrUnknownWorker:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ledger.ErrInsufficientStock, ledger.ErrShiftAlreadyOpen, ledger.ErrNoOpenShift, ledger.ErrNothingToSettle:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case ledger.ErrTxnConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
