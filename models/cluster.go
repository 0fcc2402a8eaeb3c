package models

import (
	"fmt"
	"strings"
)

// ClusterKey groups products sharing arrival month, room type, beds, grade and pool
type ClusterKey string

// ClusteredProduct is a product annotated with its cluster key
type ClusteredProduct struct {
	Product
	ClusterKey ClusterKey
}

// JoinedRow pairs a clustered product with one matching booking.
// Booking is nil when the product matched no booking.
type JoinedRow struct {
	Product ClusteredProduct
	Booking *Booking
}

// HasBooking reports whether the booking side carries a confirmation status
func (r JoinedRow) HasBooking() bool {
	return r.Booking != nil && r.Booking.Status != ""
}

// ClusterSummary counts products per cluster key
type ClusterSummary struct {
	ClusterKey   ClusterKey
	ProductCount int
}

// ClusterMetrics holds booking performance for one cluster
type ClusterMetrics struct {
	ClusterKey            ClusterKey
	TotalProductInstances int
	TotalBookings         int
	ConfirmedBookings     int
	PendingBookings       int
	CancelledBookings     int
	BookingRate           Rate
	ConfirmationRate      Rate
}

// PricingInsight is a metrics row with its pricing recommendation
type PricingInsight struct {
	ClusterMetrics
	Recommendation Recommendation
}

// Recommendation is a pricing action label
type Recommendation string

const (
	HighDemand     Recommendation = "HIGH_DEMAND - Consider increasing prices"
	ModerateDemand Recommendation = "MODERATE_DEMAND - Monitor and adjust"
	LowDemand      Recommendation = "LOW_DEMAND - Consider promotions"
	VeryLowDemand  Recommendation = "VERY_LOW_DEMAND - Review pricing strategy"
)

// Category returns the label's leading demand token, e.g. "HIGH_DEMAND"
func (r Recommendation) Category() string {
	if i := strings.Index(string(r), " "); i > 0 {
		return string(r)[:i]
	}
	return string(r)
}

// RateScale is the number of Rate units per whole ratio (3 fractional digits)
const RateScale = 1000

// Rate is a non-negative ratio stored as thousandths, e.g. 500 is 0.500
type Rate int64

// NewRate divides num by den rounding half up to the nearest thousandth.
// A zero or negative denominator yields 0.
func NewRate(num, den int) Rate {
	if den <= 0 || num <= 0 {
		return 0
	}
	n, d := int64(num), int64(den)
	return Rate((2*n*RateScale + d) / (2 * d))
}

// Float returns the rate as a float64 ratio
func (r Rate) Float() float64 {
	return float64(r) / RateScale
}

// String renders the rate with exactly three fractional digits
func (r Rate) String() string {
	return fmt.Sprintf("%d.%03d", int64(r)/RateScale, int64(r)%RateScale)
}
