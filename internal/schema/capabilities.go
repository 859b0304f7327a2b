package schema

import (
	"sort"

	"gorm.io/gorm"
)

// Table and column names whose presence varies across deployments. Everything
// else in the schema is assumed present.
const (
	TableCartons = "cartons"

	ColumnBDTotalPrice        = "bd_total_price"
	ColumnTotalPaid           = "total_paid"
	ColumnTotalDue            = "total_due"
	ColumnBDPaymentStatus     = "bd_payment_status"
	ColumnBDPaymentVerifiedAt = "bd_payment_verified_at"
)

var optionalColumns = map[string][]string{
	TableCartons: {
		ColumnBDTotalPrice,
		ColumnTotalPaid,
		ColumnTotalDue,
		ColumnBDPaymentStatus,
		ColumnBDPaymentVerifiedAt,
	},
}

// Capabilities reports which optional monetary columns exist. It is resolved
// once per process and passed by dependency injection; the engine never
// re-queries table metadata per call.
type Capabilities struct {
	columns map[string]map[string]bool
}

// HasColumn reports whether the optional column exists on the table. Columns
// outside the optional set are always reported present.
func (c Capabilities) HasColumn(table, column string) bool {
	optional, ok := optionalColumns[table]
	if !ok {
		return true
	}
	tracked := false
	for _, candidate := range optional {
		if candidate == column {
			tracked = true
			break
		}
	}
	if !tracked {
		return true
	}
	if c.columns == nil {
		return false
	}
	return c.columns[table][column]
}

// Columns returns the present optional columns for a table, sorted.
func (c Capabilities) Columns(table string) []string {
	var present []string
	for column, ok := range c.columns[table] {
		if ok {
			present = append(present, column)
		}
	}
	sort.Strings(present)
	return present
}

// Full returns capabilities with every optional column present. Used when
// schema probing is disabled and by the current-generation schema.
func Full() Capabilities {
	columns := make(map[string]map[string]bool, len(optionalColumns))
	for table, cols := range optionalColumns {
		columns[table] = make(map[string]bool, len(cols))
		for _, col := range cols {
			columns[table][col] = true
		}
	}
	return Capabilities{columns: columns}
}

// Static builds capabilities from an explicit table→columns map; used by
// tests and by deployments that pin their variant in config.
func Static(present map[string][]string) Capabilities {
	columns := make(map[string]map[string]bool, len(present))
	for table, cols := range present {
		columns[table] = make(map[string]bool, len(cols))
		for _, col := range cols {
			columns[table][col] = true
		}
	}
	return Capabilities{columns: columns}
}

// Detect probes the live database once for every optional column.
func Detect(db *gorm.DB) Capabilities {
	migrator := db.Migrator()
	columns := make(map[string]map[string]bool, len(optionalColumns))
	for table, cols := range optionalColumns {
		columns[table] = make(map[string]bool, len(cols))
		for _, col := range cols {
			columns[table][col] = migrator.HasColumn(table, col)
		}
	}
	return Capabilities{columns: columns}
}
