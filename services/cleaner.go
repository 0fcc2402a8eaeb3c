package services

import (
	"errors"
	"strconv"
	"strings"

	"cluster-pricing/models"
	"cluster-pricing/utils"
)

var (
	errDuplicateID = errors.New("duplicate product id")
	errNotPositive = errors.New("must be positive")
)

// ProductValidator normalizes loaded products and rejects ones the pipeline cannot cluster
type ProductValidator struct {
	logger *utils.Logger
}

// NewProductValidator creates a new ProductValidator
func NewProductValidator(logger *utils.Logger) *ProductValidator {
	return &ProductValidator{logger: logger}
}

// Validate trims text fields and returns a fresh slice of products.
// An empty id, a non-positive bed count or grade, or a duplicated id fails with
// MalformedInputError. The input slice is not modified.
func (v *ProductValidator) Validate(products []models.Product) ([]models.Product, error) {
	seen := utils.NewIDSet(len(products))
	valid := make([]models.Product, 0, len(products))

	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		p.RoomName = strings.TrimSpace(p.RoomName)
		p.RoomType = strings.TrimSpace(p.RoomType)
		p.ArrivalDate = strings.TrimSpace(p.ArrivalDate)

		if p.ID == "" {
			return nil, &models.MalformedInputError{
				Entity: "product", ID: "#" + strconv.Itoa(i+1), Field: "id", Value: "",
			}
		}
		if !seen.Add(p.ID) {
			return nil, &models.MalformedInputError{
				Entity: "product", ID: p.ID, Field: "id", Value: p.ID,
				Err: errDuplicateID,
			}
		}

		if p.Beds <= 0 {
			return nil, &models.MalformedInputError{
				Entity: "product", ID: p.ID, Field: "no_of_beds", Value: strconv.Itoa(p.Beds),
				Err: errNotPositive,
			}
		}
		if p.Grade <= 0 {
			return nil, &models.MalformedInputError{
				Entity: "product", ID: p.ID, Field: "grade", Value: strconv.Itoa(p.Grade),
				Err: errNotPositive,
			}
		}
		if p.RoomType == "" {
			v.logger.Debug("Product %s has an empty room type", p.ID)
		}

		valid = append(valid, p)
	}

	v.logger.Info("Validated %d products", len(valid))
	return valid, nil
}
