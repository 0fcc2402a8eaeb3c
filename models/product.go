package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used by every record store
const DateLayout = "2006-01-02"

// Product is one bookable room instance on a specific arrival date
type Product struct {
	ID          string
	RoomName    string
	ArrivalDate string // YYYY-MM-DD as ingested
	Beds        int
	RoomType    string
	Grade       int // star rating
	PrivatePool bool
}

// Arrival parses the product's arrival date
func (p Product) Arrival() (time.Time, error) {
	return ParseDate(p.ArrivalDate)
}

// BookingStatus is the confirmation state of a booking as recorded upstream
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "Confirmed"
	StatusPending   BookingStatus = "Pending"
	StatusCancelled BookingStatus = "Cancelled"
)

// Booking references a product stay. ProductID need not exist in the product set.
type Booking struct {
	ID           string
	ProductID    string
	CreationDate string
	Status       BookingStatus
	ArrivalDate  string
}

// dateLayouts lists the layouts accepted for calendar dates, canonical first.
// Drivers that hand DATE columns back as timestamps produce the RFC3339 forms.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ParseDate parses a calendar date in any of the accepted layouts
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// NormalizeDate rewrites a parseable date in canonical form. Unparseable input
// is returned trimmed but otherwise untouched so later stages can reject it.
func NormalizeDate(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return t.Format(DateLayout)
}
