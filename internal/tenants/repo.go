package tenants

import (
	"context"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles tenant and plan persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	List(ctx context.Context, query ListTenantsQuery) ([]models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	TryConsume(ctx context.Context, slug string, limit *int) (bool, error)
	ResetUsage(ctx context.Context, slug string) (bool, error)
	CountByPlan(ctx context.Context, code enums.PlanCode) (int64, error)
	FindPlan(ctx context.Context, code enums.PlanCode) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	UpsertPlan(ctx context.Context, plan *models.Plan) error
	DeletePlan(ctx context.Context, code enums.PlanCode) error
}

// ListTenantsQuery filters the tenant listing.
type ListTenantsQuery struct {
	Plan   *enums.PlanCode
	Status *enums.TenantStatus
}

type repository struct {
	repo.Base
}

// NewRepository returns a tenants repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	ok, err := r.First(ctx, &tenant, "slug = ?", slug)
	if err != nil || !ok {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) List(ctx context.Context, query ListTenantsQuery) ([]models.Tenant, error) {
	q := r.DB(ctx).Model(&models.Tenant{})
	if query.Plan != nil {
		q = q.Where("plan = ?", *query.Plan)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	var tenants []models.Tenant
	if err := q.Order("created_at DESC").Order("slug ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.DB(ctx).Create(tenant).Error
}

// Update writes the editable tenant fields. action_count is owned by the usage
// gate and never written here.
func (r *repository) Update(ctx context.Context, tenant *models.Tenant) error {
	return r.DB(ctx).
		Model(&models.Tenant{}).
		Where("slug = ?", tenant.Slug).
		Updates(map[string]any{
			"owner_name": tenant.OwnerName,
			"email":      tenant.Email,
			"plan":       tenant.Plan,
			"status":     tenant.Status,
			"mrr":        tenant.MRR,
			"city":       tenant.City,
			"state":      tenant.State,
		}).Error
}

// TryConsume increments action_count by one only while it is below limit.
// A nil limit increments unconditionally.
func (r *repository) TryConsume(ctx context.Context, slug string, limit *int) (bool, error) {
	q := r.DB(ctx).Model(&models.Tenant{})
	if limit != nil {
		q = q.Where("slug = ? AND action_count < ?", slug, *limit)
	} else {
		q = q.Where("slug = ?", slug)
	}
	res := q.UpdateColumn("action_count", gorm.Expr("action_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ResetUsage(ctx context.Context, slug string) (bool, error) {
	res := r.DB(ctx).Model(&models.Tenant{}).Where("slug = ?", slug).UpdateColumn("action_count", 0)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CountByPlan(ctx context.Context, code enums.PlanCode) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Tenant{}).Where("plan = ?", code).Count(&count).Error
	return count, err
}

func (r *repository) FindPlan(ctx context.Context, code enums.PlanCode) (*models.Plan, error) {
	var plan models.Plan
	ok, err := r.First(ctx, &plan, "code = ?", code)
	if err != nil || !ok {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.DB(ctx).Order("base_price ASC").Order("code ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) UpsertPlan(ctx context.Context, plan *models.Plan) error {
	if plan.Features == nil {
		plan.Features = pq.StringArray{}
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "base_price", "price_per_user", "min_users",
				"features", "recommended", "action_limit", "updated_at",
			}),
		}).
		Create(plan).Error
}

func (r *repository) DeletePlan(ctx context.Context, code enums.PlanCode) error {
	return r.DB(ctx).Where("code = ?", code).Delete(&models.Plan{}).Error
}
