package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/carousel-scheduler/internal/service"
	"github.com/maheshrc27/carousel-scheduler/internal/transfer"
)

type CarouselHandler struct {
	s service.CarouselService
}

func NewCarouselHandler(service service.CarouselService) *CarouselHandler {
	return &CarouselHandler{s: service}
}

func (h *CarouselHandler) CreateCarousel(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.CarouselCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	id, err := h.s.Create(c.UserContext(), userID, req.Title, req.Aspect)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": id,
	})
}

func (h *CarouselHandler) GetCarousel(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	detail, err := h.s.Get(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"carousel":   detail.Carousel,
		"thumbnails": detail.Thumbnails,
	}
	if detail.Carousel.Caption.Valid {
		resp["caption"] = detail.Carousel.Caption.String
	}
	if detail.Carousel.ScheduledAt.Valid {
		resp["scheduled_at"] = detail.Carousel.ScheduledAt.Time
		resp["timezone"] = detail.Carousel.Timezone.String
	}
	return c.JSON(resp)
}

func (h *CarouselHandler) GenerateCaption(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transfer.CaptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Unable to parse request")
		}
	}

	caption, err := h.s.GenerateCaption(c.UserContext(), GetUserID(c), id, req.Preset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"caption": caption,
	})
}

func (h *CarouselHandler) RemoveCarousel(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Remove(c.UserContext(), GetUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Carousel removed",
	})
}
