package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
)

// Product is a sellable catalog entry: the base offer, an order bump, an upsell, or a shipping option.
type Product struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Type              enums.ProductType `gorm:"column:type;type:text;not null;index:idx_products_type_active_sort,priority:1"`
	Name              string            `gorm:"column:name;not null"`
	Description       string            `gorm:"column:description;not null"`
	PriceCents        int               `gorm:"column:price_cents;not null"`
	ComparePriceCents *int              `gorm:"column:compare_price_cents"`
	Active            bool              `gorm:"column:active;not null;index:idx_products_type_active_sort,priority:2"`
	Sort              int               `gorm:"column:sort;not null;index:idx_products_type_active_sort,priority:3"`
	ImageURL          string            `gorm:"column:image_url;not null"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns an id when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
