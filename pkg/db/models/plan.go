package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Plan is a subscription tier. ActionLimit nil means no limit was configured.
type Plan struct {
	Code         enums.PlanCode  `gorm:"column:code;primaryKey" json:"code"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	BasePrice    decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null" json:"base_price"`
	PricePerUser decimal.Decimal `gorm:"column:price_per_user;type:numeric(12,2);not null;default:0" json:"price_per_user"`
	MinUsers     int             `gorm:"column:min_users;not null;default:1" json:"min_users"`
	Features     pq.StringArray  `gorm:"column:features;type:text[]" json:"features"`
	Recommended  bool            `gorm:"column:recommended;not null;default:false" json:"recommended"`
	ActionLimit  *int            `gorm:"column:action_limit" json:"action_limit,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

// IsLimited reports whether writes on this plan are metered. Free plans are
// always metered; paid plans only when a positive limit is configured.
func (p Plan) IsLimited() bool {
	return p.BasePrice.IsZero() || (p.ActionLimit != nil && *p.ActionLimit > 0)
}
