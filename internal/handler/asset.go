package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/repository"
)

// RegistryHandler serves the assets, maintenance types and maintenance
// records that schedules refer to.
type RegistryHandler struct {
	Assets  *repository.AssetRepo
	Types   *repository.MaintenanceTypeRepo
	Records *repository.RecordRepo
}

// NewRegistryHandler panics if any repository is nil.
func NewRegistryHandler(assets *repository.AssetRepo, types *repository.MaintenanceTypeRepo, records *repository.RecordRepo) *RegistryHandler {
	if assets == nil || types == nil || records == nil {
		panic("nil repository passed to NewRegistryHandler")
	}
	return &RegistryHandler{Assets: assets, Types: types, Records: records}
}

type assetReq struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Description *string           `json:"description"`
	Location    *string           `json:"location" validate:"omitempty,max=255"`
	Status      model.AssetStatus `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
}

// CreateAsset handles POST /v1/assets.
func (h *RegistryHandler) CreateAsset(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body assetReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := c.Validate(&body); err != nil {
		return badRequest(c, validationMessage(err))
	}
	a := &model.Asset{
		UserID:      uid,
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		Status:      body.Status,
	}
	if err := h.Assets.Create(c.Request().Context(), a); err != nil {
		return internalError(c, err, "could not create asset")
	}
	return c.JSON(http.StatusCreated, a)
}

// ListAssets handles GET /v1/assets.
func (h *RegistryHandler) ListAssets(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Assets.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return internalError(c, err, "could not list assets")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// GetAsset handles GET /v1/assets/:id.
func (h *RegistryHandler) GetAsset(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	a, err := h.Assets.GetByIDAndUser(c.Request().Context(), id, uid)
	if errors.Is(err, repository.ErrAssetNotFound) {
		return notFound(c, "asset not found")
	}
	if err != nil {
		return internalError(c, err, "db error")
	}
	return c.JSON(http.StatusOK, a)
}

// DeleteAsset handles DELETE /v1/assets/:id.  The asset's records and
// schedules are removed with it.
func (h *RegistryHandler) DeleteAsset(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	err = h.Assets.DeleteByIDAndUser(c.Request().Context(), id, uid)
	if errors.Is(err, repository.ErrAssetNotFound) {
		return notFound(c, "asset not found")
	}
	if err != nil {
		return internalError(c, err, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
