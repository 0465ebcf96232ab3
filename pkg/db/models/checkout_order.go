package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

// CheckoutOrder is a Pix charge that the gateway accepted.
type CheckoutOrder struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CartKey           string             `gorm:"column:cart_key;not null;index"`
	Customer          types.Customer     `gorm:"column:customer;type:jsonb;serializer:json"`
	Summary           types.OrderSummary `gorm:"column:summary;type:jsonb;serializer:json"`
	Pix               types.PixCharge    `gorm:"column:pix;type:jsonb;serializer:json"`
	Status            enums.OrderStatus  `gorm:"column:status;type:text;not null"`
	TotalCents        int                `gorm:"column:total_cents;not null"`
	UsedFallbackTaxID bool               `gorm:"column:used_fallback_tax_id;not null"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}

func (CheckoutOrder) TableName() string { return "checkout_orders" }

func (o *CheckoutOrder) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
