package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

// CheckoutCart tracks one storefront visitor's progress through the funnel, keyed by cart key.
type CheckoutCart struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CartKey     string             `gorm:"column:cart_key;not null;uniqueIndex"`
	Customer    types.Customer     `gorm:"column:customer;type:jsonb;serializer:json"`
	Summary     types.OrderSummary `gorm:"column:summary;type:jsonb;serializer:json"`
	Attribution types.Attribution  `gorm:"column:attribution;type:jsonb;serializer:json"`
	Stage       enums.CartStage    `gorm:"column:stage;type:text;not null"`
	Status      enums.CartStatus   `gorm:"column:status;type:text;not null"`
	TotalCents  int                `gorm:"column:total_cents;not null"`
	LastSeen    time.Time          `gorm:"column:last_seen;not null;index"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (CheckoutCart) TableName() string { return "checkout_carts" }

func (c *CheckoutCart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
