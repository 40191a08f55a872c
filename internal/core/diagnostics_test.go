package core

import (
	"strings"
	"testing"
)

func TestDiagnostics_AddAndCount(t *testing.T) {
	d := NewDiagnostics()
	d.Add(2, CodeCostInvalid, ColCost, "gratis")
	d.Add(3, CodeCostInvalid, ColCost, "x")
	d.Add(3, CodeUnknownTariff, ColTariff, "SEMANAL")

	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
	if d.Count(CodeCostInvalid) != 2 {
		t.Errorf("Count(ROW005) = %d, want 2", d.Count(CodeCostInvalid))
	}
	if d.Count(CodeShortRow) != 0 {
		t.Errorf("Count(ROW010) = %d, want 0", d.Count(CodeShortRow))
	}
	if got := d.Summary(); got != "ROW005=2 ROW009=1" {
		t.Errorf("Summary() = %q, want %q", got, "ROW005=2 ROW009=1")
	}

	items := d.Items()
	if items[0].Line != 2 || items[2].Value != "SEMANAL" {
		t.Errorf("Items() out of order: %+v", items)
	}
}

func TestDiagnostics_Nil(t *testing.T) {
	var d *Diagnostics
	d.Add(1, CodeCostInvalid, ColCost, "x")

	if d.Len() != 0 || d.Count(CodeCostInvalid) != 0 || d.Items() != nil || d.Summary() != "" {
		t.Error("nil Diagnostics should discard everything")
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Line: 12, Code: CodeCostInvalid, Field: ColCost, Value: "abc"}
	s := d.String()
	for _, want := range []string{"line 12", "[ROW005]", `COSTO="abc"`, "cost unreadable"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestCode_MessageUnknown(t *testing.T) {
	if got := Code("ROW999").Message(); got != "unknown diagnostic" {
		t.Errorf("Message() = %q", got)
	}
}
