package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/schedule"
)

// ScheduleHandler exposes the scheduling engine over HTTP.
type ScheduleHandler struct {
	Svc *schedule.Service
}

func NewScheduleHandler(svc *schedule.Service) *ScheduleHandler {
	if svc == nil {
		panic("nil service passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Svc: svc}
}

// DefaultUpcomingDays is the window used when ?days is absent.
const DefaultUpcomingDays = 7

type createScheduleReq struct {
	AssetID           uint64  `json:"asset_id"`
	MaintenanceTypeID *uint64 `json:"maintenance_type_id"`
	BasedOnRecordID   *uint64 `json:"based_on_record_id"`
	FrequencyType     string  `json:"frequency_type"`
	FrequencyValue    int     `json:"frequency_value"`
	ScheduledDate     *string `json:"scheduled_date"`
}

type updateScheduleReq struct {
	MaintenanceTypeID *uint64 `json:"maintenance_type_id"`
	ScheduledDate     *string `json:"scheduled_date"`
	Status            *string `json:"status"`
	FrequencyType     *string `json:"frequency_type"`
	FrequencyValue    *int    `json:"frequency_value"`
}

type completeReq struct {
	RecordID uint64 `json:"record_id"`
}

// scheduleError translates engine errors to responses.  Validation and
// ownership failures are 400, missing rows 404, edits of completed rows
// 409 and anything else is an opaque 500.
func scheduleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, schedule.ErrValidation), errors.Is(err, schedule.ErrInvalidReference):
		return badRequest(c, err.Error())
	case errors.Is(err, schedule.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, schedule.ErrScheduleCompleted):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return internalError(c, err, "internal server error")
}

func optionalDate(s *string) (*model.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func listResponse(items []*model.Schedule) echo.Map {
	return echo.Map{"items": items, "total": len(items)}
}

// List handles GET /v1/maintenance-schedules.
func (h *ScheduleHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(items))
}

// Stats handles GET /v1/maintenance-schedules/stats.
func (h *ScheduleHandler) Stats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	st, err := h.Svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Upcoming handles GET /v1/maintenance-schedules/upcoming?days=N.
func (h *ScheduleHandler) Upcoming(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	days := DefaultUpcomingDays
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "days must be an integer")
		}
		days = n
	}
	items, err := h.Svc.Upcoming(c.Request().Context(), uid, days)
	if err != nil {
		return scheduleError(c, err)
	}
	resp := listResponse(items)
	resp["days"] = days
	return c.JSON(http.StatusOK, resp)
}

// Overdue handles GET /v1/maintenance-schedules/overdue.
func (h *ScheduleHandler) Overdue(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Svc.Overdue(c.Request().Context(), uid)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(items))
}

// ByAsset handles GET /v1/maintenance-schedules/asset/:assetId.
func (h *ScheduleHandler) ByAsset(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	assetID, ok := pathID(c, "assetId")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	items, err := h.Svc.ListByAsset(c.Request().Context(), assetID, uid)
	if err != nil {
		return scheduleError(c, err)
	}
	resp := listResponse(items)
	resp["asset_id"] = assetID
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/maintenance-schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	s, err := h.Svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Create handles POST /v1/maintenance-schedules.
func (h *ScheduleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body createScheduleReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, err := optionalDate(body.ScheduledDate)
	if err != nil {
		return badRequest(c, err.Error())
	}
	s, err := h.Svc.Create(c.Request().Context(), uid, schedule.CreateInput{
		AssetID:           body.AssetID,
		MaintenanceTypeID: body.MaintenanceTypeID,
		BasedOnRecordID:   body.BasedOnRecordID,
		FrequencyType:     model.FrequencyType(body.FrequencyType),
		FrequencyValue:    body.FrequencyValue,
		ScheduledDate:     date,
	})
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT and PATCH /v1/maintenance-schedules/:id.  Only the
// fields present in the body change.
func (h *ScheduleHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var body updateScheduleReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var upd model.ScheduleUpdate
	upd.MaintenanceTypeID = body.MaintenanceTypeID
	upd.FrequencyValue = body.FrequencyValue
	if body.ScheduledDate != nil {
		d, err := model.ParseDate(*body.ScheduledDate)
		if err != nil {
			return badRequest(c, err.Error())
		}
		upd.ScheduledDate = &d
	}
	if body.Status != nil {
		st := model.ScheduleStatus(*body.Status)
		upd.Status = &st
	}
	if body.FrequencyType != nil {
		ft := model.FrequencyType(*body.FrequencyType)
		upd.FrequencyType = &ft
	}

	s, err := h.Svc.Update(c.Request().Context(), id, uid, upd)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete handles DELETE /v1/maintenance-schedules/:id.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), id, uid); err != nil {
		return scheduleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Complete handles POST /v1/maintenance-schedules/:id/complete and
// returns the successor schedule.
func (h *ScheduleHandler) Complete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var body completeReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	next, err := h.Svc.Complete(c.Request().Context(), id, uid, body.RecordID)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusCreated, next)
}
