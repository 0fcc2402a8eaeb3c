package services

import (
	"sort"

	"cluster-pricing/models"
)

// clusterAccumulator gathers counts for one cluster during a single aggregation
type clusterAccumulator struct {
	instances int
	bookings  int
	confirmed int
	pending   int
	cancelled int
}

func (a *clusterAccumulator) add(row models.JoinedRow) {
	a.instances++
	if !row.HasBooking() {
		return
	}
	a.bookings++
	switch row.Booking.Status {
	case models.StatusConfirmed:
		a.confirmed++
	case models.StatusPending:
		a.pending++
	case models.StatusCancelled:
		a.cancelled++
	}
}

func (a *clusterAccumulator) metrics(key models.ClusterKey) models.ClusterMetrics {
	m := models.ClusterMetrics{
		ClusterKey:            key,
		TotalProductInstances: a.instances,
		TotalBookings:         a.bookings,
		ConfirmedBookings:     a.confirmed,
		PendingBookings:       a.pending,
		CancelledBookings:     a.cancelled,
		BookingRate:           models.NewRate(a.bookings, a.instances),
	}
	if a.bookings > 0 {
		m.ConfirmationRate = models.NewRate(a.confirmed, a.bookings)
	}
	return m
}

// ComputeClusterMetrics groups joined rows by cluster key and derives booking
// counts and rates. Rows are ordered by booking rate descending, then cluster
// key ascending.
//
// Bookings whose status is not one of Confirmed, Pending or Cancelled count
// toward TotalBookings but none of the status buckets.
func ComputeClusterMetrics(rows []models.JoinedRow) []models.ClusterMetrics {
	acc := make(map[models.ClusterKey]*clusterAccumulator)
	for _, row := range rows {
		a, ok := acc[row.Product.ClusterKey]
		if !ok {
			a = &clusterAccumulator{}
			acc[row.Product.ClusterKey] = a
		}
		a.add(row)
	}

	out := make([]models.ClusterMetrics, 0, len(acc))
	for key, a := range acc {
		out = append(out, a.metrics(key))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingRate != out[j].BookingRate {
			return out[i].BookingRate > out[j].BookingRate
		}
		return out[i].ClusterKey < out[j].ClusterKey
	})
	return out
}
