package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/service"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
	"github.com/maheshrc27/carousel-scheduler/internal/transfer"
)

type ScheduleHandler struct {
	s   service.ScheduleService
	cal service.CalendarService
	now func() time.Time
}

func NewScheduleHandler(service service.ScheduleService, cal service.CalendarService) *ScheduleHandler {
	return &ScheduleHandler{s: service, cal: cal, now: time.Now}
}

func entryResponse(e models.ScheduledEntry, zone string) transfer.EntryResponse {
	if e.Timezone != "" {
		zone = e.Timezone
	}
	local, _ := timezone.TimeOfDay(e.ScheduledAt, zone)
	return transfer.EntryResponse{
		CarouselID:  e.CarouselID.String(),
		Title:       e.Title,
		ScheduledAt: e.ScheduledAt,
		Timezone:    e.Timezone,
		LocalTime:   local,
		Status:      e.Status,
	}
}

func (h *ScheduleHandler) GetMonth(c *fiber.Ctx) error {
	now := h.now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	zone := c.Query("tz")

	view, err := h.s.Month(c.UserContext(), GetUserID(c), year, time.Month(month), zone)
	if err != nil {
		return respondError(c, err)
	}

	resp := transfer.MonthResponse{
		Year:     view.Year,
		Month:    int(view.Month),
		Timezone: view.Zone,
		Cells:    make([]transfer.CellResponse, len(view.Cells)),
	}
	for i, cell := range view.Cells {
		cr := transfer.CellResponse{
			Key:       cell.Key,
			Day:       cell.Day,
			IsPadding: cell.IsPadding,
			IsPast:    cell.IsPast,
			IsToday:   cell.IsToday,
		}
		for _, e := range cell.Entries {
			cr.Entries = append(cr.Entries, entryResponse(e, view.Zone))
		}
		resp.Cells[i] = cr
	}
	return c.JSON(resp)
}

func (h *ScheduleHandler) Schedule(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	id, err := uuid.Parse(req.CarouselID)
	if err != nil {
		return badRequest(c, "Invalid carousel_id")
	}

	res, err := h.s.Schedule(c.UserContext(), GetUserID(c), id, req.Date, req.Time, req.Timezone)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.ScheduleResponse{
		Entry:      entryResponse(res.Entry, req.Timezone),
		Resolution: res.Resolution.String(),
	})
}

func (h *ScheduleHandler) Unschedule(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Unschedule(c.UserContext(), GetUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Carousel unscheduled",
	})
}

func (h *ScheduleHandler) ExportICS(c *fiber.Ctx) error {
	body, err := h.cal.ExportICS(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="schedule.ics"`)
	return c.SendString(body)
}

func (h *ScheduleHandler) Notifications(c *fiber.Ctx) error {
	list := h.s.Notifications(GetUserID(c))
	if list == nil {
		return c.JSON([]any{})
	}
	return c.JSON(list)
}

func (h *ScheduleHandler) DismissNotification(c *fiber.Ctx) error {
	h.s.DismissNotification(GetUserID(c), c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}
