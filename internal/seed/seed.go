// Package seed loads plans and tenants from a YAML file into the platform tables.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// File is the document accepted by the seed command.
type File struct {
	Plans   []Plan   `yaml:"plans"`
	Tenants []Tenant `yaml:"tenants"`
}

// Plan codes and tenant plans accept the legacy display names ("Grátis",
// "Profissional") as well as the canonical codes.
type Plan struct {
	Code         string   `yaml:"code"`
	Name         string   `yaml:"name"`
	BasePrice    string   `yaml:"base_price"`
	PricePerUser string   `yaml:"price_per_user"`
	MinUsers     int      `yaml:"min_users"`
	Features     []string `yaml:"features"`
	Recommended  bool     `yaml:"recommended"`
	ActionLimit  *int     `yaml:"action_limit"`
}

type Tenant struct {
	Slug      string `yaml:"slug"`
	OwnerName string `yaml:"owner_name"`
	Email     string `yaml:"email"`
	Plan      string `yaml:"plan"`
	Status    string `yaml:"status"`
	MRR       string `yaml:"mrr"`
	City      string `yaml:"city"`
	State     string `yaml:"state"`
}

// Result counts what an Apply call changed.
type Result struct {
	PlansUpserted  int `json:"plans_upserted"`
	TenantsCreated int `json:"tenants_created"`
	TenantsSkipped int `json:"tenants_skipped"`
}

type platform interface {
	UpsertPlan(ctx context.Context, input tenants.PlanInput) (*models.Plan, error)
	CreateTenant(ctx context.Context, input tenants.CreateTenantInput) (*tenants.TenantDTO, error)
}

// Load decodes a seed document, rejecting unknown keys.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return &File{}, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// Apply upserts every plan, then creates tenants in order. Tenants whose slug
// already exists are left untouched so reseeding never resets live counters.
func Apply(ctx context.Context, svc platform, file *File, logg *logger.Logger) (*Result, error) {
	if svc == nil {
		return nil, fmt.Errorf("tenant service required")
	}
	result := &Result{}
	if file == nil {
		return result, nil
	}

	for i, p := range file.Plans {
		input, err := p.input()
		if err != nil {
			return result, fmt.Errorf("plan %d (%s): %w", i, p.Code, err)
		}
		plan, err := svc.UpsertPlan(ctx, input)
		if err != nil {
			return result, fmt.Errorf("plan %d (%s): %w", i, p.Code, err)
		}
		result.PlansUpserted++
		if logg != nil {
			logg.Info(logg.WithField(ctx, "plan", string(plan.Code)), "seed.plan_upserted")
		}
	}

	for i, t := range file.Tenants {
		input, err := t.input()
		if err != nil {
			return result, fmt.Errorf("tenant %d (%s): %w", i, t.Slug, err)
		}
		created, err := svc.CreateTenant(ctx, input)
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			result.TenantsSkipped++
			if logg != nil {
				logg.Info(logg.WithField(ctx, "tenant", input.Slug), "seed.tenant_exists")
			}
			continue
		}
		if err != nil {
			return result, fmt.Errorf("tenant %d (%s): %w", i, t.Slug, err)
		}
		result.TenantsCreated++
		if logg != nil {
			logg.Info(logg.WithField(ctx, "tenant", created.Slug), "seed.tenant_created")
		}
	}
	return result, nil
}

func (p Plan) input() (tenants.PlanInput, error) {
	base, err := parseMoney(p.BasePrice)
	if err != nil {
		return tenants.PlanInput{}, fmt.Errorf("base_price: %w", err)
	}
	perUser, err := parseMoney(p.PricePerUser)
	if err != nil {
		return tenants.PlanInput{}, fmt.Errorf("price_per_user: %w", err)
	}
	return tenants.PlanInput{
		Code:         p.Code,
		Name:         p.Name,
		BasePrice:    base,
		PricePerUser: perUser,
		MinUsers:     p.MinUsers,
		Features:     p.Features,
		Recommended:  p.Recommended,
		ActionLimit:  p.ActionLimit,
	}, nil
}

func (t Tenant) input() (tenants.CreateTenantInput, error) {
	input := tenants.CreateTenantInput{
		Slug:      t.Slug,
		OwnerName: t.OwnerName,
		Email:     t.Email,
		Plan:      t.Plan,
		Status:    t.Status,
		City:      t.City,
		State:     t.State,
	}
	if strings.TrimSpace(t.MRR) != "" {
		mrr, err := parseMoney(t.MRR)
		if err != nil {
			return input, fmt.Errorf("mrr: %w", err)
		}
		input.MRR = &mrr
	}
	return input, nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
