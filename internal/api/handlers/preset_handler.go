package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/carousel-scheduler/internal/preset"
)

type PresetHandler struct {
	store preset.Store
}

func NewPresetHandler(store preset.Store) *PresetHandler {
	return &PresetHandler{store: store}
}

func (h *PresetHandler) ListPresets(c *fiber.Ctx) error {
	return c.JSON(h.store.List(GetUserID(c)))
}

func (h *PresetHandler) PutPreset(c *fiber.Ctx) error {
	var p preset.Preset
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	p.Name = c.Params("name")

	if err := h.store.Put(GetUserID(c), p); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	saved, err := h.store.Get(GetUserID(c), p.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(saved)
}

func (h *PresetHandler) DeletePreset(c *fiber.Ctx) error {
	err := h.store.Delete(GetUserID(c), c.Params("name"))
	if errors.Is(err, preset.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Preset not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
