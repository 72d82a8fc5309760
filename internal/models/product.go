package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	AgeRatings = []string{"E", "E10+", "T", "M", "AO", "RP"}
	Platforms  = []string{"Windows", "Mac", "Linux"}
)

const (
	DefaultAgeRating = "RP"
	UnlimitedStock   = -1
)

type Requirements struct {
	OS        string `bson:"os,omitempty" json:"os,omitempty"`
	Processor string `bson:"processor,omitempty" json:"processor,omitempty"`
	Memory    string `bson:"memory,omitempty" json:"memory,omitempty"`
	Graphics  string `bson:"graphics,omitempty" json:"graphics,omitempty"`
	Storage   string `bson:"storage,omitempty" json:"storage,omitempty"`
}

type SystemRequirements struct {
	Minimum     *Requirements `bson:"minimum,omitempty" json:"minimum,omitempty"`
	Recommended *Requirements `bson:"recommended,omitempty" json:"recommended,omitempty"`
}

func (SystemRequirements) GormDataType() string { return "json" }

func (SystemRequirements) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

func (s SystemRequirements) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SystemRequirements) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*s = SystemRequirements{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("system requirements scan: unsupported type %T", value)
	}
	return json.Unmarshal(b, s)
}

type Product struct {
	ID                 string                      `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name               string                      `gorm:"not null" bson:"name" json:"name"`
	Slug               string                      `gorm:"uniqueIndex;not null" bson:"slug" json:"slug"`
	Description        string                      `gorm:"not null" bson:"description" json:"description"`
	ShortDescription   string                      `gorm:"size:200" bson:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	Price              float64                     `gorm:"not null;index" bson:"price" json:"price"`
	DiscountPrice      *float64                    `bson:"discountPrice" json:"discountPrice"`
	DiscountPercentage float64                     `gorm:"not null" bson:"discountPercentage" json:"discountPercentage"`
	ReleaseDate        time.Time                   `gorm:"not null;index:,sort:desc" bson:"releaseDate" json:"releaseDate"`
	Developer          string                      `gorm:"not null" bson:"developer" json:"developer"`
	Publisher          string                      `gorm:"not null" bson:"publisher" json:"publisher"`
	Genres             datatypes.JSONSlice[string] `bson:"genres" json:"genres"`
	Tags               datatypes.JSONSlice[string] `bson:"tags" json:"tags"`
	Images             datatypes.JSONSlice[string] `bson:"images" json:"images"`
	Videos             datatypes.JSONSlice[string] `bson:"videos" json:"videos"`
	Screenshots        datatypes.JSONSlice[string] `bson:"screenshots" json:"screenshots"`
	SystemRequirements SystemRequirements          `bson:"systemRequirements" json:"systemRequirements"`
	Languages          datatypes.JSONSlice[string] `bson:"languages" json:"languages"`
	AgeRating          string                      `gorm:"size:4;not null" bson:"ageRating" json:"ageRating"`
	Platform           datatypes.JSONSlice[string] `bson:"platform" json:"platform"`
	DownloadSize       string                      `bson:"downloadSize,omitempty" json:"downloadSize,omitempty"`
	IsActive           bool                        `gorm:"not null;index" bson:"isActive" json:"isActive"`
	IsFeatured         bool                        `gorm:"not null;index" bson:"isFeatured" json:"isFeatured"`
	Stock              int                         `gorm:"not null" bson:"stock" json:"stock"`
	TotalSales         int                         `gorm:"not null" bson:"totalSales" json:"totalSales"`
	AverageRating      float64                     `gorm:"not null" bson:"averageRating" json:"averageRating"`
	ReviewCount        int                         `gorm:"not null" bson:"reviewCount" json:"reviewCount"`
	CreatedAt          time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OnSale reports whether the product carries a discount below its list price.
func (p *Product) OnSale() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice < p.Price
}
