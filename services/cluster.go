package services

import (
	"strconv"
	"strings"

	"cluster-pricing/models"
)

const (
	keySeparator   = "_"
	fieldSeparator = "-"
	monthLayout    = "Jan-2006"
)

// BuildClusterKey derives the cluster key of one product:
//
//	<Mon-YYYY>_<room type>_<beds>-beds_<grade>-stars_<private pool>
//
// An arrival date that does not parse fails with MalformedInputError.
func BuildClusterKey(p models.Product) (models.ClusterKey, error) {
	arrival, err := p.Arrival()
	if err != nil {
		return "", &models.MalformedInputError{
			Entity: "product", ID: p.ID, Field: "arrival_date", Value: p.ArrivalDate, Err: err,
		}
	}

	parts := []string{
		arrival.Format(monthLayout),
		p.RoomType,
		strconv.Itoa(p.Beds) + fieldSeparator + "beds",
		strconv.Itoa(p.Grade) + fieldSeparator + "stars",
		strconv.FormatBool(p.PrivatePool),
	}
	return models.ClusterKey(strings.Join(parts, keySeparator)), nil
}

// ClusterProducts annotates every product with its cluster key, preserving input order.
// The first product whose key cannot be built aborts the whole call.
func ClusterProducts(products []models.Product) ([]models.ClusteredProduct, error) {
	clustered := make([]models.ClusteredProduct, 0, len(products))
	for _, p := range products {
		key, err := BuildClusterKey(p)
		if err != nil {
			return nil, err
		}
		clustered = append(clustered, models.ClusteredProduct{Product: p, ClusterKey: key})
	}
	return clustered, nil
}
