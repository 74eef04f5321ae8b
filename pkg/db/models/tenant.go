package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Tenant is one salon storefront. Slug is the namespace for every tenant
// scoped collection.
type Tenant struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Slug        string             `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	OwnerName   string             `gorm:"column:owner_name;not null" json:"owner_name"`
	Email       string             `gorm:"column:email;not null" json:"email"`
	Plan        enums.PlanCode     `gorm:"column:plan;not null" json:"plan"`
	Status      enums.TenantStatus `gorm:"column:status;not null;default:'active'" json:"status"`
	MRR         decimal.Decimal    `gorm:"column:mrr;type:numeric(12,2);not null;default:0" json:"mrr"`
	City        string             `gorm:"column:city" json:"city"`
	State       string             `gorm:"column:state" json:"state"`
	ActionCount int                `gorm:"column:action_count;not null;default:0" json:"action_count"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }
