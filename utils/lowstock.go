package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"backend/config"
	"backend/ledger"
	"backend/models"
)

func LowStockThreshold() int64 {
	if v, err := strconv.ParseInt(os.Getenv("LOW_STOCK_THRESHOLD"), 10, 64); err == nil && v > 0 {
		return v
	}
	return 10
}

// CheckLowStock runs daily from the scheduler: it looks for bar stock under
// the alert threshold and mails the list to the admin address.
func CheckLowStock() {
	logg := config.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	low, err := ledger.NewMongoStore().LowStock(ctx, models.LocationBar, LowStockThreshold())
	if err != nil {
		logg.WithError(err).Error("low stock check failed")
		return
	}
	if len(low) == 0 {
		logg.Info("low stock check: all levels fine")
		return
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		logg.Warnf("low stock check: %d products low, ADMIN_EMAIL not set", len(low))
		return
	}

	var b strings.Builder
	b.WriteString("Products under the bar stock threshold:\n\n")
	for _, p := range low {
		fmt.Fprintf(&b, "- %s: %d units\n", p.Name, p.Units)
	}

	if err := SendEmail(adminEmail, "Low bar stock alert", b.String()); err != nil {
		logg.WithError(err).Error("failed to send low stock alert")
		return
	}
	logg.Infof("low stock alert sent for %d products", len(low))
}
