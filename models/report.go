package models

import "time"

// Stage is a step of the clustering pipeline, in execution order
type Stage int

const (
	StageStart Stage = iota
	StageProductsLoaded
	StageProductsValidated
	StageClustered
	StageSummarized
	StageJoined
	StageMetricsComputed
	StageClassified
	StagePersisted
)

var stageNames = [...]string{
	"Start",
	"ProductsLoaded",
	"ProductsValidated",
	"Clustered",
	"Summarized",
	"Joined",
	"MetricsComputed",
	"Classified",
	"Persisted",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// RunStatus is the terminal outcome of a pipeline run
type RunStatus string

const (
	RunSuccess        RunStatus = "Success"
	RunPartialFailure RunStatus = "PartialFailure"
	RunFailed         RunStatus = "Failed"
)

// TableResult is the outcome of persisting one output table
type TableResult struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// RunReport describes one pipeline run from start to its terminal state
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Stage      Stage     `json:"-"`
	StageName  string    `json:"stage"`
	Status     RunStatus `json:"status"`

	// FailedStage is the first stage that could not be reached, set only for failed runs
	FailedStage string `json:"failed_stage,omitempty"`
	Err         error  `json:"-"`
	Reason      string `json:"reason,omitempty"`

	Products   int `json:"products"`
	Bookings   int `json:"bookings"`
	Clusters   int `json:"clusters"`
	JoinedRows int `json:"joined_rows"`

	Tables   []TableResult    `json:"tables"`
	Insights []PricingInsight `json:"-"`
}

// Succeeded reports whether every stage advanced and every write succeeded
func (r *RunReport) Succeeded() bool {
	return r.Status == RunSuccess
}

// Duration is the wall time of the run
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
