package catalog

import (
	"encoding/json"
	"math"

	"vaultadmin/internal/models"
)

// NullableFloat records whether a JSON field was present, and whether it was null.
type NullableFloat struct {
	Set   bool
	Value *float64
}

func (n *NullableFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n.Value = &f
	return nil
}

type CreateGameInput struct {
	Name               string                     `json:"name" validate:"required"`
	Slug               string                     `json:"slug"`
	Description        string                     `json:"description" validate:"required"`
	ShortDescription   string                     `json:"shortDescription" validate:"max=200"`
	Price              *float64                   `json:"price" validate:"required,gte=0"`
	DiscountPrice      *float64                   `json:"discountPrice" validate:"omitempty,gte=0"`
	DiscountPercentage *float64                   `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	ReleaseDate        string                     `json:"releaseDate" validate:"required"`
	Developer          string                     `json:"developer" validate:"required"`
	Publisher          string                     `json:"publisher" validate:"required"`
	Genres             []string                   `json:"genres"`
	Tags               []string                   `json:"tags"`
	Images             []string                   `json:"images" validate:"omitempty,dive,url"`
	Videos             []string                   `json:"videos" validate:"omitempty,dive,url"`
	Screenshots        []string                   `json:"screenshots" validate:"omitempty,dive,url"`
	SystemRequirements *models.SystemRequirements `json:"systemRequirements"`
	Languages          []string                   `json:"languages"`
	AgeRating          string                     `json:"ageRating" validate:"omitempty,oneof=E E10+ T M AO RP"`
	Platform           []string                   `json:"platform" validate:"omitempty,dive,oneof=Windows Mac Linux"`
	DownloadSize       string                     `json:"downloadSize"`
	IsActive           *bool                      `json:"isActive"`
	IsFeatured         *bool                      `json:"isFeatured"`
	Stock              *int                       `json:"stock"`
}

// UpdateGameInput carries a partial update; nil fields are left unchanged.
type UpdateGameInput struct {
	Name               *string                    `json:"name" validate:"omitempty,min=1"`
	Slug               *string                    `json:"slug"`
	Description        *string                    `json:"description" validate:"omitempty,min=1"`
	ShortDescription   *string                    `json:"shortDescription" validate:"omitempty,max=200"`
	Price              *float64                   `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice      NullableFloat              `json:"discountPrice"`
	DiscountPercentage *float64                   `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	ReleaseDate        *string                    `json:"releaseDate"`
	Developer          *string                    `json:"developer" validate:"omitempty,min=1"`
	Publisher          *string                    `json:"publisher" validate:"omitempty,min=1"`
	Genres             []string                   `json:"genres"`
	Tags               []string                   `json:"tags"`
	Images             []string                   `json:"images" validate:"omitempty,dive,url"`
	Videos             []string                   `json:"videos" validate:"omitempty,dive,url"`
	Screenshots        []string                   `json:"screenshots" validate:"omitempty,dive,url"`
	SystemRequirements *models.SystemRequirements `json:"systemRequirements"`
	Languages          []string                   `json:"languages"`
	AgeRating          *string                    `json:"ageRating" validate:"omitempty,oneof=E E10+ T M AO RP"`
	Platform           []string                   `json:"platform" validate:"omitempty,dive,oneof=Windows Mac Linux"`
	DownloadSize       *string                    `json:"downloadSize"`
	IsActive           *bool                      `json:"isActive"`
	IsFeatured         *bool                      `json:"isFeatured"`
	Stock              *int                       `json:"stock"`
}

// discountPercentage rounds half up, so 12.5 becomes 13.
func discountPercentage(price, discount float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Floor((price-discount)/price*100 + 0.5)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
