package tenants

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// Service exposes the platform level tenant and plan operations.
type Service interface {
	ListTenants(ctx context.Context, query ListTenantsQuery) ([]TenantDTO, error)
	GetTenant(ctx context.Context, slug string) (*TenantDTO, error)
	CreateTenant(ctx context.Context, input CreateTenantInput) (*TenantDTO, error)
	UpdateTenant(ctx context.Context, slug string, input UpdateTenantInput) (*TenantDTO, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	UpsertPlan(ctx context.Context, input PlanInput) (*models.Plan, error)
	DeletePlan(ctx context.Context, code string) error
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	repo Repository
}

// NewService builds a tenant service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	return &service{repo: repo}, nil
}

// TenantDTO is a tenant with its usage snapshot attached.
type TenantDTO struct {
	models.Tenant
	Usage usage.Snapshot `json:"usage"`
}

// CreateTenantInput captures the fields required to open a storefront.
type CreateTenantInput struct {
	Slug      string
	OwnerName string
	Email     string
	Plan      string
	Status    string
	MRR       *decimal.Decimal
	City      string
	State     string
}

// UpdateTenantInput holds the optional tenant fields to change.
type UpdateTenantInput struct {
	OwnerName *string
	Email     *string
	Plan      *string
	Status    *string
	MRR       *decimal.Decimal
	City      *string
	State     *string
}

// PlanInput describes a plan to create or replace.
type PlanInput struct {
	Code         string
	Name         string
	BasePrice    decimal.Decimal
	PricePerUser decimal.Decimal
	MinUsers     int
	Features     []string
	Recommended  bool
	ActionLimit  *int
}

// Overview aggregates the platform for the SaaS dashboard.
type Overview struct {
	TotalTenants int                        `json:"total_tenants"`
	ByPlan       map[enums.PlanCode]int     `json:"by_plan"`
	ByStatus     map[enums.TenantStatus]int `json:"by_status"`
	TotalMRR     decimal.Decimal            `json:"total_mrr"`
	Exhausted    []string                   `json:"exhausted"`
}

func (s *service) ListTenants(ctx context.Context, query ListTenantsQuery) ([]TenantDTO, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}
	plans, err := s.planIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TenantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row, plans[row.Plan]))
	}
	return out, nil
}

func (s *service) GetTenant(ctx context.Context, slug string) (*TenantDTO, error) {
	tenant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	plan, err := s.repo.FindPlan(ctx, tenant.Plan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	dto := toDTO(*tenant, plan)
	return &dto, nil
}

func (s *service) CreateTenant(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be 2-63 lowercase letters, digits or dashes")
	}
	if strings.TrimSpace(input.OwnerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner name is required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	plan, err := s.resolvePlan(ctx, input.Plan)
	if err != nil {
		return nil, err
	}
	status := enums.TenantStatusActive
	if input.Status != "" {
		if status, err = enums.ParseTenantStatus(input.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}
	mrr := decimal.Zero
	if input.MRR != nil {
		if input.MRR.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mrr must not be negative")
		}
		mrr = *input.MRR
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Slug:      slug,
		OwnerName: strings.TrimSpace(input.OwnerName),
		Email:     strings.TrimSpace(input.Email),
		Plan:      plan.Code,
		Status:    status,
		MRR:       mrr,
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}
	dto := toDTO(*tenant, plan)
	return &dto, nil
}

func (s *service) UpdateTenant(ctx context.Context, slug string, input UpdateTenantInput) (*TenantDTO, error) {
	tenant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}

	if input.OwnerName != nil {
		if strings.TrimSpace(*input.OwnerName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner name is required")
		}
		tenant.OwnerName = strings.TrimSpace(*input.OwnerName)
	}
	if input.Email != nil {
		if !strings.Contains(*input.Email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
		}
		tenant.Email = strings.TrimSpace(*input.Email)
	}
	if input.Plan != nil {
		plan, err := s.resolvePlan(ctx, *input.Plan)
		if err != nil {
			return nil, err
		}
		tenant.Plan = plan.Code
	}
	if input.Status != nil {
		status, err := enums.ParseTenantStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		tenant.Status = status
	}
	if input.MRR != nil {
		if input.MRR.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mrr must not be negative")
		}
		tenant.MRR = *input.MRR
	}
	if input.City != nil {
		tenant.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		tenant.State = strings.TrimSpace(*input.State)
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant")
	}
	return s.GetTenant(ctx, tenant.Slug)
}

func (s *service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return plans, nil
}

func (s *service) UpsertPlan(ctx context.Context, input PlanInput) (*models.Plan, error) {
	code, err := enums.ParsePlanCode(input.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan code")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	if input.BasePrice.IsNegative() || input.PricePerUser.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}
	if input.ActionLimit != nil && *input.ActionLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action limit must not be negative")
	}
	minUsers := input.MinUsers
	if minUsers <= 0 {
		minUsers = 1
	}
	plan := &models.Plan{
		Code:         code,
		Name:         strings.TrimSpace(input.Name),
		BasePrice:    input.BasePrice,
		PricePerUser: input.PricePerUser,
		MinUsers:     minUsers,
		Features:     pq.StringArray(input.Features),
		Recommended:  input.Recommended,
		ActionLimit:  input.ActionLimit,
	}
	if err := s.repo.UpsertPlan(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save plan")
	}
	return plan, nil
}

func (s *service) DeletePlan(ctx context.Context, code string) error {
	planCode, err := enums.ParsePlanCode(code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan code")
	}
	inUse, err := s.repo.CountByPlan(ctx, planCode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tenants")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "plan is assigned to tenants").
			WithDetails(map[string]any{"tenants": inUse})
	}
	if err := s.repo.DeletePlan(ctx, planCode); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete plan")
	}
	return nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	rows, err := s.ListTenants(ctx, ListTenantsQuery{})
	if err != nil {
		return nil, err
	}
	out := &Overview{
		ByPlan:    map[enums.PlanCode]int{},
		ByStatus:  map[enums.TenantStatus]int{},
		TotalMRR:  decimal.Zero,
		Exhausted: []string{},
	}
	for _, row := range rows {
		out.TotalTenants++
		out.ByPlan[row.Plan]++
		out.ByStatus[row.Status]++
		if row.Status == enums.TenantStatusActive {
			out.TotalMRR = out.TotalMRR.Add(row.MRR)
		}
		if row.Usage.Exhausted {
			out.Exhausted = append(out.Exhausted, row.Slug)
		}
	}
	return out, nil
}

func (s *service) resolvePlan(ctx context.Context, raw string) (*models.Plan, error) {
	code, err := enums.ParsePlanCode(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan")
	}
	plan, err := s.repo.FindPlan(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("plan %q is not configured", code))
	}
	return plan, nil
}

func (s *service) planIndex(ctx context.Context) (map[enums.PlanCode]*models.Plan, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	index := make(map[enums.PlanCode]*models.Plan, len(plans))
	for i := range plans {
		index[plans[i].Code] = &plans[i]
	}
	return index, nil
}

func toDTO(tenant models.Tenant, plan *models.Plan) TenantDTO {
	return TenantDTO{Tenant: tenant, Usage: usage.Describe(tenant, plan)}
}
