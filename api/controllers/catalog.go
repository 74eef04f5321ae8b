package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	"github.com/angelmondragon/salonbook-backend/internal/settings"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type productView struct {
	models.Product
	LowStock bool `json:"low_stock"`
}

type businessInfo struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Instagram    string `json:"instagram,omitempty"`
	OpeningHours string `json:"opening_hours,omitempty"`
	Currency     string `json:"currency"`
}

type publicCatalog struct {
	Business  businessInfo      `json:"business"`
	Services  []models.Service  `json:"services"`
	Employees []models.Employee `json:"employees"`
	Products  []productView     `json:"products"`
	TimeSlots []string          `json:"time_slots"`
}

func productViews(items []models.Product, threshold int) []productView {
	out := make([]productView, 0, len(items))
	for _, item := range items {
		out = append(out, productView{Product: item, LowStock: item.Stock <= threshold})
	}
	return out
}

// PublicCatalog returns everything the booking page renders: active services
// and professionals, products with their stock flag, and the business card.
func PublicCatalog(svc catalog.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || settingsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := settingsSvc.Get(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		services, err := svc.ListServices(r.Context(), tenant, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employees, err := svc.ListEmployees(r.Context(), tenant, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.ListProducts(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, publicCatalog{
			Business: businessInfo{
				Name:         cfg.BusinessName,
				Phone:        cfg.Phone,
				Address:      cfg.Address,
				Instagram:    cfg.Instagram,
				OpeningHours: cfg.OpeningHours,
				Currency:     cfg.Currency,
			},
			Services:  services,
			Employees: employees,
			Products:  productViews(products, cfg.LowStockThreshold),
			TimeSlots: cfg.TimeSlots,
		})
	}
}

type serviceRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" validate:"money"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
	Category        string          `json:"category"`
	ImageURL        string          `json:"image_url" validate:"omitempty,url"`
	Active          *bool           `json:"active,omitempty"`
}

func (r serviceRequest) toInput() catalog.ServiceInput {
	return catalog.ServiceInput{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		Category:        r.Category,
		ImageURL:        strings.TrimSpace(r.ImageURL),
		Active:          r.Active,
	}
}

type productRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

func (r productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}
}

type employeeRequest struct {
	Name           string          `json:"name" validate:"required"`
	Role           string          `json:"role"`
	PhotoURL       string          `json:"photo_url" validate:"omitempty,url"`
	Phone          string          `json:"phone"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Active         *bool           `json:"active,omitempty"`
}

func (r employeeRequest) toInput() catalog.EmployeeInput {
	return catalog.EmployeeInput{
		Name:           r.Name,
		Role:           r.Role,
		PhotoURL:       strings.TrimSpace(r.PhotoURL),
		Phone:          r.Phone,
		CommissionRate: r.CommissionRate,
		Active:         r.Active,
	}
}

type stockAdjustRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// catalogHandler resolves the tenant and hands it to fn together with the service.
func catalogHandler(svc catalog.Service, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, tenant string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fn(w, r, tenant)
	}
}

func AdminListServices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		items, err := svc.ListServices(r.Context(), tenant, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	})
}

func AdminGetService(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		item, err := svc.GetService(r.Context(), tenant, chi.URLParam(r, "serviceId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminCreateService(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload serviceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateService(r.Context(), tenant, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	})
}

func AdminUpdateService(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload serviceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateService(r.Context(), tenant, chi.URLParam(r, "serviceId"), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminDeleteService(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		if err := svc.DeleteService(r.Context(), tenant, chi.URLParam(r, "serviceId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		items, err := svc.ListProducts(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	})
}

func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		item, err := svc.GetProduct(r.Context(), tenant, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateProduct(r.Context(), tenant, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	})
}

func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateProduct(r.Context(), tenant, chi.URLParam(r, "productId"), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		if err := svc.DeleteProduct(r.Context(), tenant, chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// AdminAdjustStock applies a signed delta to a product's stock.
func AdminAdjustStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.AdjustStock(r.Context(), tenant, chi.URLParam(r, "productId"), payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

// AdminLowStock lists products at or below the threshold. The query value
// overrides the tenant setting.
func AdminLowStock(svc catalog.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		fallback := 0
		if settingsSvc != nil {
			cfg, err := settingsSvc.Get(r.Context(), tenant)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			fallback = cfg.LowStockThreshold
		}
		threshold, err := validators.ParseQueryInt(r, "threshold", fallback, 0, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.LowStock(r.Context(), tenant, threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"threshold": threshold, "items": items})
	})
}

func AdminListEmployees(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		items, err := svc.ListEmployees(r.Context(), tenant, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	})
}

func AdminGetEmployee(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		item, err := svc.GetEmployee(r.Context(), tenant, chi.URLParam(r, "employeeId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminCreateEmployee(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload employeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateEmployee(r.Context(), tenant, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	})
}

func AdminUpdateEmployee(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload employeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateEmployee(r.Context(), tenant, chi.URLParam(r, "employeeId"), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	})
}

func AdminDeleteEmployee(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return catalogHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		if err := svc.DeleteEmployee(r.Context(), tenant, chi.URLParam(r, "employeeId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
