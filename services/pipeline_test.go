package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"cluster-pricing/models"
	"cluster-pricing/storage"
)

type memorySource struct {
	products    []models.Product
	bookings    []models.Booking
	productsErr error
	bookingsErr error
}

func (m *memorySource) LoadProducts(ctx context.Context) ([]models.Product, error) {
	return m.products, m.productsErr
}

func (m *memorySource) LoadBookings(ctx context.Context) ([]models.Booking, error) {
	return m.bookings, m.bookingsErr
}

type memorySink struct {
	mu     sync.Mutex
	tables map[string]storage.Table
	fail   map[string]bool
}

func newMemorySink(failing ...string) *memorySink {
	s := &memorySink{tables: map[string]storage.Table{}, fail: map[string]bool{}}
	for _, name := range failing {
		s.fail[name] = true
	}
	return s
}

func (m *memorySink) WriteTable(ctx context.Context, t storage.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[t.Name] {
		return fmt.Errorf("disk full")
	}
	m.tables[t.Name] = t
	return nil
}

func sampleSource() *memorySource {
	return &memorySource{
		products: []models.Product{
			suite("P1", "2024-03-10"),
			{ID: "P2", RoomName: "Room B", ArrivalDate: "2024-03-12", Beds: 1, RoomType: "Single", Grade: 2},
			{ID: "P3", RoomName: "Room C", ArrivalDate: "2024-03-20", Beds: 1, RoomType: "Single", Grade: 2},
			{ID: "P4", RoomName: "Room D", ArrivalDate: "2024-03-25", Beds: 1, RoomType: "Single", Grade: 2},
		},
		bookings: []models.Booking{
			booking("B1", "P1", "2024-03-10", models.StatusConfirmed),
			booking("B2", "P1", "2024-03-10", models.StatusCancelled),
			booking("B3", "P2", "2024-03-12", models.StatusPending),
			booking("B4", "P3", "2024-04-01", models.StatusConfirmed),
		},
	}
}

func TestPipelineRunSuccess(t *testing.T) {
	sink := newMemorySink()
	report, err := NewPipeline(sampleSource(), sink, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.Status != models.RunSuccess || !report.Succeeded() {
		t.Fatalf("expected Success, got %s (%s)", report.Status, report.Reason)
	}
	if report.Stage != models.StagePersisted {
		t.Fatalf("expected Persisted, got %s", report.Stage)
	}
	if report.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if report.Products != 4 || report.Bookings != 4 || report.Clusters != 2 || report.JoinedRows != 5 {
		t.Fatalf("unexpected counts %+v", report)
	}

	for _, name := range []string{
		storage.TableClusteredProducts, storage.TableClusterSummary,
		storage.TableClusterMetrics, storage.TablePricingInsights,
	} {
		if _, ok := sink.tables[name]; !ok {
			t.Fatalf("table %s not written", name)
		}
	}

	insights := sink.tables[storage.TablePricingInsights]
	if len(insights.Rows) != 2 {
		t.Fatalf("expected 2 insight rows, got %d", len(insights.Rows))
	}
	first := insights.Rows[0]
	if first[0] != "Mar-2024_Suite_2-beds_5-stars_true" {
		t.Fatalf("expected suite cluster first, got %v", first[0])
	}
	if first[len(first)-1] != string(models.HighDemand) {
		t.Fatalf("expected HIGH_DEMAND, got %v", first[len(first)-1])
	}
	second := insights.Rows[1]
	if second[6] != models.Rate(333) || second[len(second)-1] != string(models.LowDemand) {
		t.Fatalf("expected single cluster at 0.333 LOW_DEMAND, got %v", second)
	}
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	src := sampleSource()
	a, b := newMemorySink(), newMemorySink()
	if _, err := NewPipeline(src, a, quietLogger()).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := NewPipeline(src, b, quietLogger()).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	for name, ta := range a.tables {
		if !reflect.DeepEqual(ta, b.tables[name]) {
			t.Fatalf("table %s differs between runs", name)
		}
	}
}

func TestPipelineEmptyProducts(t *testing.T) {
	sink := newMemorySink()
	report, err := NewPipeline(&memorySource{}, sink, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("empty input must not raise, got %v", err)
	}
	if report.Status != models.RunFailed {
		t.Fatalf("expected Failed, got %s", report.Status)
	}
	var empty *models.EmptyInputError
	if !errors.As(report.Err, &empty) || empty.Collection != storage.CollectionProducts {
		t.Fatalf("expected EmptyInputError for products, got %v", report.Err)
	}
	if report.Stage != models.StageStart || report.FailedStage != "ProductsLoaded" {
		t.Fatalf("expected to stop at Start before ProductsLoaded, got %s / %s", report.Stage, report.FailedStage)
	}
	if len(sink.tables) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestPipelineMissingInput(t *testing.T) {
	src := &memorySource{productsErr: fmt.Errorf("products.csv: %w", storage.ErrNotFound)}
	report, err := NewPipeline(src, newMemorySink(), quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("missing input must not raise, got %v", err)
	}
	if report.Status != models.RunFailed || !errors.Is(report.Err, storage.ErrNotFound) {
		t.Fatalf("expected Failed with ErrNotFound, got %s %v", report.Status, report.Err)
	}
}

func TestPipelineEmptyBookingsStillRuns(t *testing.T) {
	src := sampleSource()
	src.bookings = nil
	sink := newMemorySink()
	report, err := NewPipeline(src, sink, quietLogger()).Run(context.Background())
	if err != nil || report.Status != models.RunSuccess {
		t.Fatalf("expected success without bookings, got %v %s", err, report.Status)
	}
	for _, row := range sink.tables[storage.TablePricingInsights].Rows {
		if row[len(row)-1] != string(models.VeryLowDemand) {
			t.Fatalf("expected VERY_LOW_DEMAND everywhere, got %v", row)
		}
	}
}

func TestPipelineMalformedProductIsFatal(t *testing.T) {
	src := sampleSource()
	src.products[1].ArrivalDate = "12/03/2024"
	sink := newMemorySink()
	report, err := NewPipeline(src, sink, quietLogger()).Run(context.Background())

	var mie *models.MalformedInputError
	if !errors.As(err, &mie) || mie.ID != "P2" {
		t.Fatalf("expected MalformedInputError for P2, got %v", err)
	}
	if report.Status != models.RunFailed || report.Stage != models.StageProductsValidated || report.FailedStage != "Clustered" {
		t.Fatalf("unexpected report %s %s %s", report.Status, report.Stage, report.FailedStage)
	}
	if len(sink.tables) != 0 {
		t.Fatalf("nothing should be written after a fatal stage error")
	}
}

func TestPipelineSchemaErrorIsFatal(t *testing.T) {
	src := &memorySource{productsErr: &models.SchemaMismatchError{Collection: "products", Reason: "missing required column"}}
	report, err := NewPipeline(src, newMemorySink(), quietLogger()).Run(context.Background())
	var sme *models.SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
	if report.Status != models.RunFailed {
		t.Fatalf("expected Failed, got %s", report.Status)
	}
}

func TestPipelinePartialFailure(t *testing.T) {
	sink := newMemorySink(storage.TableClusterMetrics)
	report, err := NewPipeline(sampleSource(), sink, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("write failures must not raise, got %v", err)
	}
	if report.Status != models.RunPartialFailure {
		t.Fatalf("expected PartialFailure, got %s", report.Status)
	}
	var failures models.WriteFailures
	if !errors.As(report.Err, &failures) {
		t.Fatalf("expected WriteFailures, got %T", report.Err)
	}
	if got := failures.Tables(); len(got) != 1 || got[0] != storage.TableClusterMetrics {
		t.Fatalf("expected only cluster_metrics to fail, got %v", got)
	}
	if len(sink.tables) != 3 {
		t.Fatalf("expected the other 3 tables written, got %d", len(sink.tables))
	}
	for _, tr := range report.Tables {
		if (tr.Error != "") != (tr.Table == storage.TableClusterMetrics) {
			t.Fatalf("unexpected table result %+v", tr)
		}
	}
}

func TestPipelineMalformedBookingDateIsFatal(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"products.csv": "id,room_name,arrival_date,no_of_beds,room_type,grade,private_pool\nP1,Room A,2024-12-31,2,Suite,5,Yes\n",
		"bookings.csv": "id,product_id,creation_date,confirmation_status,arrival_date\nB1,P1,2024-11-01,Confirmed,31/12/2024\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store := storage.NewDirStore(dir, quietLogger())
	sink := newMemorySink()

	report, err := NewPipeline(store, sink, quietLogger()).Run(context.Background())
	var mie *models.MalformedInputError
	if !errors.As(err, &mie) || mie.Entity != "booking" || mie.Field != "arrival_date" {
		t.Fatalf("expected MalformedInputError on booking arrival_date, got %v", err)
	}
	if report.Status != models.RunFailed || report.FailedStage != "ProductsLoaded" {
		t.Fatalf("unexpected report %s %s", report.Status, report.FailedStage)
	}
	if len(sink.tables) != 0 {
		t.Fatalf("nothing should be written after a malformed booking")
	}
}
