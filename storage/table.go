package storage

import (
	"fmt"
	"strconv"

	"cluster-pricing/models"
)

// Output table names
const (
	TableClusteredProducts = "clustered_products"
	TableClusterSummary    = "cluster_summary"
	TableClusterMetrics    = "cluster_metrics"
	TablePricingInsights   = "pricing_insights"
)

// Kind is the storage type of a column
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindBool
	KindDecimal
)

// Column is a named, typed output column
type Column struct {
	Name string
	Kind Kind
}

// Table is a complete output table. Cell values are string, int, bool or
// models.Rate according to the column kind.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var metricsColumns = []Column{
	{"cluster_key", KindText},
	{"total_product_instances", KindInt},
	{"total_bookings", KindInt},
	{"confirmed_bookings", KindInt},
	{"pending_bookings", KindInt},
	{"cancelled_bookings", KindInt},
	{"booking_rate", KindDecimal},
	{"confirmation_rate", KindDecimal},
}

func metricsCells(m models.ClusterMetrics) []any {
	return []any{
		string(m.ClusterKey),
		m.TotalProductInstances,
		m.TotalBookings,
		m.ConfirmedBookings,
		m.PendingBookings,
		m.CancelledBookings,
		m.BookingRate,
		m.ConfirmationRate,
	}
}

// ClusteredProductsTable renders products with their cluster keys
func ClusteredProductsTable(rows []models.ClusteredProduct) Table {
	t := Table{
		Name: TableClusteredProducts,
		Columns: []Column{
			{"id", KindText},
			{"room_name", KindText},
			{"arrival_date", KindText},
			{"no_of_beds", KindInt},
			{"room_type", KindText},
			{"grade", KindInt},
			{"private_pool", KindBool},
			{"cluster_key", KindText},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, p := range rows {
		t.Rows = append(t.Rows, []any{
			p.ID, p.RoomName, p.ArrivalDate, p.Beds, p.RoomType, p.Grade, p.PrivatePool, string(p.ClusterKey),
		})
	}
	return t
}

// ClusterSummaryTable renders per-cluster product counts
func ClusterSummaryTable(rows []models.ClusterSummary) Table {
	t := Table{
		Name:    TableClusterSummary,
		Columns: []Column{{"cluster_key", KindText}, {"product_count", KindInt}},
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []any{string(s.ClusterKey), s.ProductCount})
	}
	return t
}

// ClusterMetricsTable renders metrics before classification
func ClusterMetricsTable(rows []models.ClusterMetrics) Table {
	t := Table{Name: TableClusterMetrics, Columns: metricsColumns, Rows: make([][]any, 0, len(rows))}
	for _, m := range rows {
		t.Rows = append(t.Rows, metricsCells(m))
	}
	return t
}

// PricingInsightsTable renders metrics with their pricing recommendation
func PricingInsightsTable(rows []models.PricingInsight) Table {
	cols := make([]Column, 0, len(metricsColumns)+1)
	cols = append(cols, metricsColumns...)
	cols = append(cols, Column{"pricing_recommendation", KindText})

	t := Table{Name: TablePricingInsights, Columns: cols, Rows: make([][]any, 0, len(rows))}
	for _, in := range rows {
		t.Rows = append(t.Rows, append(metricsCells(in.ClusterMetrics), string(in.Recommendation)))
	}
	return t
}

// formatCell renders a cell as text for delimited output
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case models.Rate:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
