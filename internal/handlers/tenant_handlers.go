package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"notably/internal/common"
	"notably/internal/models"
	"notably/internal/services"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// UpgradeResponse represents the upgrade response
type UpgradeResponse struct {
	Message string         `json:"message"`
	Tenant  *models.Tenant `json:"tenant"`
}

// Upgrade handles POST /tenants/:slug/upgrade. The admin role is enforced by
// route middleware; tenant membership is checked here against the resolved
// tenant.
func (h *TenantHandlers) Upgrade(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	tenant, err := h.tenantService.Upgrade(ctx, principal, c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTenantNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
		case errors.Is(err, services.ErrTenantMismatch):
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		case errors.Is(err, services.ErrAlreadyPro):
			return echo.NewHTTPError(http.StatusBadRequest, "Tenant is already on Pro plan")
		default:
			return internalError(err)
		}
	}

	return c.JSON(http.StatusOK, UpgradeResponse{
		Message: "Tenant upgraded to Pro plan successfully",
		Tenant:  tenant,
	})
}

// Me handles GET /tenants/me: the principal's tenant, read from the store
// rather than reconstructed from token claims.
func (h *TenantHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	tenant, err := h.tenantService.GetByID(ctx, principal.TenantID)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
		}
		return internalError(err)
	}

	return c.JSON(http.StatusOK, tenant)
}
