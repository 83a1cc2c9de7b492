package core_test

import (
	"testing"

	"purchase-ledger/internal/core"
)

func TestIsDuplicateContainer(t *testing.T) {
	originals := []core.OriginalPurchase{{ID: "OP-1", ContainerNumber: "MSCU-778"}}
	finished := []core.FinishedGoodsPurchase{{ID: "FG-1", ContainerNumber: "CNT-001"}, {ID: "FG-2"}}

	tests := []struct {
		candidate string
		want      bool
	}{
		{"cnt-001 ", true},
		{"CNT-001", true},
		{"  mscu-778", true},
		{"CNT-002", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := core.IsDuplicateContainer(tt.candidate, originals, finished); got != tt.want {
			t.Errorf("IsDuplicateContainer(%q) = %v, want %v", tt.candidate, got, tt.want)
		}
	}
}

func TestNormalizeContainerNumber(t *testing.T) {
	if got := core.NormalizeContainerNumber("  CnT-001\t"); got != "cnt-001" {
		t.Errorf("got %q", got)
	}
}

func TestMasterData_Options(t *testing.T) {
	m := testMasterData()
	m.SubSuppliers = append(m.SubSuppliers, core.SubSupplier{ID: "SS-2", SupplierID: "SUP-2", Name: "Emile Lyon"})

	got := m.Options("SUP-2", "OT-1", "")
	if len(got.SubSuppliers) != 1 || got.SubSuppliers[0].ID != "SS-2" {
		t.Errorf("sub suppliers not filtered: %+v", got.SubSuppliers)
	}
	if len(got.OriginalProducts) != 1 {
		t.Errorf("expected products of OT-1, got %+v", got.OriginalProducts)
	}
	if len(got.SubDivisions) != 0 {
		t.Errorf("blank division should empty sub divisions, got %+v", got.SubDivisions)
	}
	if len(got.Suppliers) != 2 || len(m.SubSuppliers) != 2 {
		t.Error("top level lists must be unchanged")
	}
}
