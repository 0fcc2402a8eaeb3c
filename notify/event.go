// Package notify publishes pipeline run outcomes to the message broker.
package notify

import (
	"time"

	"cluster-pricing/models"
)

// ClusterRecommendation is the per-cluster slice of a run that downstream
// pricing consumers act on
type ClusterRecommendation struct {
	ClusterKey     string `json:"cluster_key"`
	BookingRate    string `json:"booking_rate"`
	Recommendation string `json:"pricing_recommendation"`
}

// RunCompletedEvent is published once per run after its final status is known.
// Recommendations are included only for successful runs.
type RunCompletedEvent struct {
	RunID           string                  `json:"run_id"`
	Status          string                  `json:"status"`
	Stage           string                  `json:"stage"`
	FailedStage     string                  `json:"failed_stage,omitempty"`
	Reason          string                  `json:"reason,omitempty"`
	Products        int                     `json:"products"`
	Bookings        int                     `json:"bookings"`
	Clusters        int                     `json:"clusters"`
	Tables          []models.TableResult    `json:"tables"`
	Recommendations []ClusterRecommendation `json:"recommendations,omitempty"`
	StartedAt       string                  `json:"started_at"`
	FinishedAt      string                  `json:"finished_at"`
}

// NewRunCompletedEvent builds the event payload from a run report
func NewRunCompletedEvent(r *models.RunReport) RunCompletedEvent {
	ev := RunCompletedEvent{
		RunID:       r.RunID,
		Status:      string(r.Status),
		Stage:       r.Stage.String(),
		FailedStage: r.FailedStage,
		Reason:      r.Reason,
		Products:    r.Products,
		Bookings:    r.Bookings,
		Clusters:    r.Clusters,
		Tables:      r.Tables,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:  r.FinishedAt.UTC().Format(time.RFC3339),
	}
	if r.Status == models.RunSuccess {
		for _, in := range r.Insights {
			ev.Recommendations = append(ev.Recommendations, ClusterRecommendation{
				ClusterKey:     string(in.ClusterKey),
				BookingRate:    in.BookingRate.String(),
				Recommendation: string(in.Recommendation),
			})
		}
	}
	return ev
}
