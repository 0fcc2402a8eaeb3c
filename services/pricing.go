package services

import "cluster-pricing/models"

// demandThresholds are inclusive lower bounds on booking rate, highest first.
// Anything below the last bound is VeryLowDemand.
var demandThresholds = []struct {
	min   models.Rate
	label models.Recommendation
}{
	{800, models.HighDemand},
	{500, models.ModerateDemand},
	{200, models.LowDemand},
}

// Classify maps a booking rate to its pricing recommendation
func Classify(rate models.Rate) models.Recommendation {
	for _, t := range demandThresholds {
		if rate >= t.min {
			return t.label
		}
	}
	return models.VeryLowDemand
}

// ClassifyBookingRate applies the same thresholds to an unrounded ratio, for
// callers outside the pipeline that hold raw bookings/instances ratios. The
// pipeline itself classifies the rounded Rate via Classify, so 0.7996 is
// MODERATE here but rounds to 0.800 and is HIGH there.
func ClassifyBookingRate(rate float64) models.Recommendation {
	for _, t := range demandThresholds {
		if rate >= t.min.Float() {
			return t.label
		}
	}
	return models.VeryLowDemand
}

// CreatePricingInsights attaches a recommendation to every metrics row, keeping order
func CreatePricingInsights(metrics []models.ClusterMetrics) []models.PricingInsight {
	insights := make([]models.PricingInsight, 0, len(metrics))
	for _, m := range metrics {
		insights = append(insights, models.PricingInsight{
			ClusterMetrics: m,
			Recommendation: Classify(m.BookingRate),
		})
	}
	return insights
}
