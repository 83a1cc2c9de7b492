package core_test

import (
	"testing"
	"time"

	"purchase-ledger/internal/core"
)

func TestDefaultIDGenerator(t *testing.T) {
	date := time.Date(2026, time.March, 19, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		seq      int64
		supplier string
		want     string
	}{
		{42, "Acme Trading", "OP-0042-190326-ACM"},
		{7, "Émile Textiles", "OP-0007-190326-EMI"},
		{12345, "Al-Noor", "OP-12345-190326-ALN"},
		{1, "A1", "OP-0001-190326-AXX"},
		{1, "", "OP-0001-190326-XXX"},
	}
	for _, tt := range tests {
		if got := core.DefaultIDGenerator.Generate(tt.seq, date, tt.supplier); got != tt.want {
			t.Errorf("Generate(%d, %q) = %q, want %q", tt.seq, tt.supplier, got, tt.want)
		}
	}
}

func TestNextBatchNumber(t *testing.T) {
	tests := []struct {
		name      string
		originals []core.OriginalPurchase
		finished  []core.FinishedGoodsPurchase
		want      string
	}{
		{"empty", nil, nil, "101"},
		{"non numeric only", []core.OriginalPurchase{{BatchNumber: "B-7"}}, nil, "101"},
		{"highest across both", []core.OriginalPurchase{{BatchNumber: "110"}, {BatchNumber: "12a"}}, []core.FinishedGoodsPurchase{{BatchNumber: "205"}}, "206"},
		{"originals only", []core.OriginalPurchase{{BatchNumber: "101"}}, nil, "102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.NextBatchNumber(tt.originals, tt.finished); got != tt.want {
				t.Errorf("NextBatchNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}
