package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cluster-pricing/models"
	"cluster-pricing/storage"
	"cluster-pricing/utils"

	"github.com/google/uuid"
)

// Pipeline runs the clustering analysis from a record source to a record sink
type Pipeline struct {
	source    storage.RecordSource
	sink      storage.RecordSink
	validator *ProductValidator
	logger    *utils.Logger
	now       func() time.Time
}

// NewPipeline creates a new Pipeline
func NewPipeline(source storage.RecordSource, sink storage.RecordSink, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		source:    source,
		sink:      sink,
		validator: NewProductValidator(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes every stage in order and persists the four output tables.
//
// The returned error is non-nil only when a stage fails fatally (malformed
// input, schema mismatch, store I/O); the report then names the stage that was
// not reached. Missing or empty input is not an error: the report comes back
// with status Failed and an *models.EmptyInputError or storage.ErrNotFound in
// report.Err. Write failures never abort the run; they yield PartialFailure.
func (p *Pipeline) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
		Stage:     models.StageStart,
	}
	p.logger.Info("Run %s started", report.RunID)

	// Load
	products, err := p.source.LoadProducts(ctx)
	if err != nil {
		return p.abort(report, models.StageProductsLoaded, fmt.Errorf("load products: %w", err))
	}
	if len(products) == 0 {
		return p.abort(report, models.StageProductsLoaded, &models.EmptyInputError{Collection: storage.CollectionProducts})
	}
	bookings, err := p.source.LoadBookings(ctx)
	if err != nil {
		return p.abort(report, models.StageProductsLoaded, fmt.Errorf("load bookings: %w", err))
	}
	if len(bookings) == 0 {
		p.logger.Warn("No bookings loaded; every cluster will report a zero booking rate")
	}
	report.Products, report.Bookings = len(products), len(bookings)
	p.advance(report, models.StageProductsLoaded)

	// Validate
	products, err = p.validator.Validate(products)
	if err != nil {
		return p.abort(report, models.StageProductsValidated, err)
	}
	p.advance(report, models.StageProductsValidated)

	// Cluster
	clustered, err := ClusterProducts(products)
	if err != nil {
		return p.abort(report, models.StageClustered, err)
	}
	if len(clustered) == 0 {
		return p.abort(report, models.StageClustered, &models.EmptyInputError{Collection: storage.TableClusteredProducts})
	}
	p.advance(report, models.StageClustered)

	// Summarize
	summary := SummarizeClusters(clustered)
	if len(summary) == 0 {
		return p.abort(report, models.StageSummarized, &models.EmptyInputError{Collection: storage.TableClusterSummary})
	}
	report.Clusters = len(summary)
	p.logger.Info("Created %d clusters from %d products", len(summary), len(clustered))
	p.advance(report, models.StageSummarized)

	// Join
	joined := JoinBookings(clustered, bookings)
	if len(joined) == 0 {
		return p.abort(report, models.StageJoined, &models.EmptyInputError{Collection: "joined rows"})
	}
	report.JoinedRows = len(joined)
	p.advance(report, models.StageJoined)

	// Metrics
	metrics := ComputeClusterMetrics(joined)
	if len(metrics) == 0 {
		return p.abort(report, models.StageMetricsComputed, &models.EmptyInputError{Collection: storage.TableClusterMetrics})
	}
	p.advance(report, models.StageMetricsComputed)

	// Classify
	insights := CreatePricingInsights(metrics)
	if len(insights) == 0 {
		return p.abort(report, models.StageClassified, &models.EmptyInputError{Collection: storage.TablePricingInsights})
	}
	report.Insights = insights
	p.advance(report, models.StageClassified)

	// Persist
	p.persist(ctx, report, []storage.Table{
		storage.ClusteredProductsTable(clustered),
		storage.ClusterSummaryTable(summary),
		storage.ClusterMetricsTable(metrics),
		storage.PricingInsightsTable(insights),
	})
	return report, nil
}

func (p *Pipeline) advance(report *models.RunReport, s models.Stage) {
	report.Stage = s
	report.StageName = s.String()
	p.logger.Debug("Run %s reached %s", report.RunID, s)
}

// abort moves the run to Failed at the stage it could not reach. Missing and
// empty input end the run quietly; anything else is returned to the caller.
func (p *Pipeline) abort(report *models.RunReport, failed models.Stage, err error) (*models.RunReport, error) {
	report.StageName = report.Stage.String()
	report.Status = models.RunFailed
	report.FailedStage = failed.String()
	report.Err = err
	report.Reason = err.Error()
	report.FinishedAt = p.now()

	var empty *models.EmptyInputError
	if errors.As(err, &empty) || errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("Run %s has nothing to do before %s: %v", report.RunID, failed, err)
		return report, nil
	}
	p.logger.Error("Run %s failed before %s: %v", report.RunID, failed, err)
	return report, err
}

// persist writes all tables concurrently and waits for every write
func (p *Pipeline) persist(ctx context.Context, report *models.RunReport, tables []storage.Table) {
	results := make([]models.TableResult, len(tables))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures models.WriteFailures
	)
	for i, t := range tables {
		wg.Add(1)
		go func(i int, t storage.Table) {
			defer wg.Done()
			results[i] = models.TableResult{Table: t.Name, Rows: len(t.Rows)}
			if err := p.sink.WriteTable(ctx, t); err != nil {
				p.logger.Error("Failed to write %s: %v", t.Name, err)
				results[i].Error = err.Error()
				mu.Lock()
				failures = append(failures, &models.WriteFailure{Table: t.Name, Err: err})
				mu.Unlock()
			}
		}(i, t)
	}
	wg.Wait()

	report.Tables = results
	p.advance(report, models.StagePersisted)
	report.FinishedAt = p.now()

	if len(failures) > 0 {
		report.Status = models.RunPartialFailure
		report.Err = failures
		report.Reason = failures.Error()
		p.logger.Warn("Run %s finished with %d/%d table writes failed", report.RunID, len(failures), len(tables))
		return
	}
	report.Status = models.RunSuccess
	p.logger.Info("Run %s succeeded: %d tables written in %v", report.RunID, len(tables), report.Duration())
}
