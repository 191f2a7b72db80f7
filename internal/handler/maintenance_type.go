package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/repository"
)

type typeReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// CreateType handles POST /v1/maintenance-types.
func (h *RegistryHandler) CreateType(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body typeReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := c.Validate(&body); err != nil {
		return badRequest(c, validationMessage(err))
	}
	t := &model.MaintenanceType{UserID: uid, Name: body.Name, Description: body.Description}
	if err := h.Types.Create(c.Request().Context(), t); err != nil {
		return internalError(c, err, "could not create maintenance type")
	}
	return c.JSON(http.StatusCreated, t)
}

// CreateDefaultTypes handles POST /v1/maintenance-types/create-defaults.
func (h *RegistryHandler) CreateDefaultTypes(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Types.CreateDefaults(c.Request().Context(), uid)
	if err != nil {
		return internalError(c, err, "could not create default types")
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": items, "total": len(items)})
}

// ListTypes handles GET /v1/maintenance-types.
func (h *RegistryHandler) ListTypes(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Types.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return internalError(c, err, "could not list maintenance types")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// GetType handles GET /v1/maintenance-types/:id.
func (h *RegistryHandler) GetType(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	t, err := h.Types.GetByIDAndUser(c.Request().Context(), id, uid)
	if errors.Is(err, repository.ErrTypeNotFound) {
		return notFound(c, "maintenance type not found")
	}
	if err != nil {
		return internalError(c, err, "db error")
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteType handles DELETE /v1/maintenance-types/:id.
func (h *RegistryHandler) DeleteType(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	err = h.Types.DeleteByIDAndUser(c.Request().Context(), id, uid)
	if errors.Is(err, repository.ErrTypeNotFound) {
		return notFound(c, "maintenance type not found")
	}
	if err != nil {
		return internalError(c, err, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
