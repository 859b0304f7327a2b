package schema

import "testing"

func TestFullHasEveryOptionalColumn(t *testing.T) {
	caps := Full()
	for _, col := range []string{
		ColumnBDTotalPrice,
		ColumnTotalPaid,
		ColumnTotalDue,
		ColumnBDPaymentStatus,
		ColumnBDPaymentVerifiedAt,
	} {
		if !caps.HasColumn(TableCartons, col) {
			t.Fatalf("expected %s to be present under Full()", col)
		}
	}
}

func TestStaticReportsOnlyListedColumns(t *testing.T) {
	caps := Static(map[string][]string{
		TableCartons: {ColumnBDTotalPrice, ColumnBDPaymentStatus},
	})

	if !caps.HasColumn(TableCartons, ColumnBDTotalPrice) {
		t.Fatal("bd_total_price should be present")
	}
	if caps.HasColumn(TableCartons, ColumnTotalPaid) {
		t.Fatal("total_paid should be absent")
	}
	if caps.HasColumn(TableCartons, ColumnTotalDue) {
		t.Fatal("total_due should be absent")
	}
}

func TestUntrackedColumnsAlwaysPresent(t *testing.T) {
	caps := Static(nil)
	if !caps.HasColumn(TableCartons, "order_id") {
		t.Fatal("non-optional columns are assumed present")
	}
	if !caps.HasColumn("orders", "amount_total") {
		t.Fatal("untracked tables are assumed complete")
	}
}

func TestZeroValueHasNoOptionalColumns(t *testing.T) {
	var caps Capabilities
	if caps.HasColumn(TableCartons, ColumnTotalDue) {
		t.Fatal("zero-value capabilities must report optional columns absent")
	}
}
