package ledger

import (
	"testing"

	"backend/models"
)

func TestToBaseUnits(t *testing.T) {
	product := &models.Product{Name: "Beer", UnitsPerBox: 24, UnitsPerBasket: 30}

	tests := []struct {
		name    string
		qty     int64
		unit    string
		want    int64
		wantErr error
	}{
		{"each", 5, models.UnitEach, 5, nil},
		{"box", 2, models.UnitBox, 48, nil},
		{"basket", 3, models.UnitBasket, 90, nil},
		{"zero quantity", 0, models.UnitEach, 0, ErrInvalidInput},
		{"negative quantity", -4, models.UnitBox, 0, ErrInvalidInput},
		{"unknown unit", 1, "pallet", 0, ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToBaseUnits(tc.qty, tc.unit, product)
			if err != tc.wantErr {
				t.Fatalf("ToBaseUnits() error = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ToBaseUnits() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestToBaseUnitsDefaultsFactorToOne(t *testing.T) {
	product := &models.Product{Name: "Loose item"}
	got, err := ToBaseUnits(7, models.UnitBox, product)
	if err != nil {
		t.Fatalf("ToBaseUnits() error = %v", err)
	}
	if got != 7 {
		t.Errorf("ToBaseUnits() = %d, want 7", got)
	}
}
