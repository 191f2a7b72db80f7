package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/repository"
)

type recordReq struct {
	AssetID           uint64  `json:"asset_id" validate:"required"`
	MaintenanceTypeID *uint64 `json:"maintenance_type_id"`
	DatePerformed     string  `json:"date_performed" validate:"required"`
	Notes             *string `json:"notes"`
	CostCents         *int64  `json:"cost_cents" validate:"omitempty,min=0"`
}

// CreateRecord handles POST /v1/maintenance-records.  The asset and the
// optional type must belong to the caller.
func (h *RegistryHandler) CreateRecord(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body recordReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, validationMessage(err))
	}
	performed, err := model.ParseDate(body.DatePerformed)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	ok, err := h.Assets.ExistsForUser(ctx, body.AssetID, uid)
	if err != nil {
		return internalError(c, err, "db error")
	}
	if !ok {
		return badRequest(c, "asset not found or not owned by user")
	}
	if body.MaintenanceTypeID != nil {
		ok, err := h.Types.ExistsForUser(ctx, *body.MaintenanceTypeID, uid)
		if err != nil {
			return internalError(c, err, "db error")
		}
		if !ok {
			return badRequest(c, "maintenance type not found or not owned by user")
		}
	}

	rec := &model.MaintenanceRecord{
		AssetID:           body.AssetID,
		MaintenanceTypeID: body.MaintenanceTypeID,
		DatePerformed:     performed,
		Notes:             body.Notes,
		CostCents:         body.CostCents,
	}
	if err := h.Records.Create(ctx, rec); err != nil {
		return internalError(c, err, "could not create maintenance record")
	}
	return c.JSON(http.StatusCreated, rec)
}

// ListRecords handles GET /v1/maintenance-records.
func (h *RegistryHandler) ListRecords(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Records.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return internalError(c, err, "could not list maintenance records")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// ListRecordsByAsset handles GET /v1/maintenance-records/asset/:assetId.
func (h *RegistryHandler) ListRecordsByAsset(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	assetID, ok := pathID(c, "assetId")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	items, err := h.Records.ListByAsset(c.Request().Context(), assetID, uid)
	if err != nil {
		return internalError(c, err, "could not list maintenance records")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items), "asset_id": assetID})
}

// GetRecord handles GET /v1/maintenance-records/:id.
func (h *RegistryHandler) GetRecord(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	rec, err := h.Records.GetByIDAndUser(c.Request().Context(), id, uid)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return notFound(c, "maintenance record not found")
	}
	if err != nil {
		return internalError(c, err, "db error")
	}
	return c.JSON(http.StatusOK, rec)
}
