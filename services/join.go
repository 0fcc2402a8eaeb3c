package services

import (
	"strings"

	"cluster-pricing/models"
)

type stayKey struct {
	productID string
	arrival   string
}

func newStayKey(productID, arrival string) stayKey {
	return stayKey{productID: strings.TrimSpace(productID), arrival: models.NormalizeDate(arrival)}
}

// JoinBookings left-joins clustered products to bookings on product id and
// arrival date. Each product yields one row per matching booking, in booking
// input order, or a single row with a nil booking when nothing matches.
//
// A product with several matching bookings appears once per match, so downstream
// instance counts grow with the number of bookings.
func JoinBookings(clustered []models.ClusteredProduct, bookings []models.Booking) []models.JoinedRow {
	owned := make([]models.Booking, len(bookings))
	copy(owned, bookings)

	index := make(map[stayKey][]*models.Booking, len(owned))
	for i := range owned {
		b := &owned[i]
		k := newStayKey(b.ProductID, b.ArrivalDate)
		index[k] = append(index[k], b)
	}

	rows := make([]models.JoinedRow, 0, len(clustered))
	for _, cp := range clustered {
		matches := index[newStayKey(cp.ID, cp.ArrivalDate)]
		if len(matches) == 0 {
			rows = append(rows, models.JoinedRow{Product: cp})
			continue
		}
		for _, b := range matches {
			rows = append(rows, models.JoinedRow{Product: cp, Booking: b})
		}
	}
	return rows
}
