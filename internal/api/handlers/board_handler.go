package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/board"
	"github.com/maheshrc27/carousel-scheduler/internal/service"
	"github.com/maheshrc27/carousel-scheduler/internal/transfer"
)

type BoardHandler struct {
	s service.BoardService
}

func NewBoardHandler(service service.BoardService) *BoardHandler {
	return &BoardHandler{s: service}
}

func boardResponse(snap service.BoardSnapshot) transfer.BoardResponse {
	resp := transfer.BoardResponse{
		CarouselID: snap.CarouselID.String(),
		DragState:  snap.DragState.String(),
		Slots:      make([]transfer.SlotResponse, len(snap.Slots)),
		UpdatedAt:  snap.UpdatedAt,
	}
	if snap.Dragging {
		ghost := snap.Ghost
		resp.Ghost = &ghost
	}
	for i, v := range snap.Slots {
		slot := transfer.SlotResponse{
			Index: v.Index,
			Kind:  board.KindOf(v.Occupant),
			Name:  v.Occupant.Name(),
		}
		switch {
		case v.PreviewHandle != "":
			slot.PreviewURL = "/api/board/preview/" + v.PreviewHandle
		case v.PreviewURL != "":
			slot.PreviewURL = v.PreviewURL
		}
		resp.Slots[i] = slot
	}
	return resp
}

func (h *BoardHandler) respond(c *fiber.Ctx, snap service.BoardSnapshot, err error) error {
	if err != nil {
		status := statusOf(err)
		body := fiber.Map{"error": apperr.UserMessage(err)}
		if snap.Slots != nil {
			body["board"] = boardResponse(snap)
		}
		return c.Status(status).JSON(body)
	}
	return c.JSON(boardResponse(snap))
}

func readFiles(headers []*multipart.FileHeader) ([]board.LocalFile, error) {
	files := make([]board.LocalFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: error opening file: %v", apperr.ErrValidation, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, service.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: error reading file content: %v", apperr.ErrValidation, err)
		}

		lf, err := service.NewLocalFile(fh.Filename, data)
		if err != nil {
			return nil, err
		}
		files = append(files, lf)
	}
	return files, nil
}

func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	snap, err := h.s.Open(c.UserContext(), GetUserID(c), id)
	return h.respond(c, snap, err)
}

func (h *BoardHandler) uploadedFiles(c *fiber.Ctx) ([]board.LocalFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse form", apperr.ErrValidation)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no files selected", apperr.ErrValidation)
	}
	return readFiles(headers)
}

// UploadIntoSlot handles files dropped onto one slot.
func (h *BoardHandler) UploadIntoSlot(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid slot index")
	}
	files, err := h.uploadedFiles(c)
	if err != nil {
		return respondError(c, err)
	}

	snap, err := h.s.Upload(c.UserContext(), GetUserID(c), id, index, files)
	return h.respond(c, snap, err)
}

// AddFiles handles files picked without a target slot.
func (h *BoardHandler) AddFiles(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	files, err := h.uploadedFiles(c)
	if err != nil {
		return respondError(c, err)
	}

	snap, err := h.s.Append(c.UserContext(), GetUserID(c), id, files)
	return h.respond(c, snap, err)
}

func (h *BoardHandler) ImportLibrary(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid slot index")
	}
	var req transfer.LibraryImport
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "Unable to parse request")
	}

	snap, err := h.s.ImportLibrary(c.UserContext(), GetUserID(c), id, index, req.Bucket, req.Path)
	return h.respond(c, snap, err)
}

func (h *BoardHandler) ClearSlot(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid slot index")
	}

	snap, err := h.s.Clear(c.UserContext(), GetUserID(c), id, index)
	return h.respond(c, snap, err)
}

func (h *BoardHandler) Drag(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req transfer.DragEvent
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}

	snap, err := h.s.Drag(c.UserContext(), GetUserID(c), id, req.Event, req.Index)
	return h.respond(c, snap, err)
}

func (h *BoardHandler) Persist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.s.Persist(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	resp := transfer.PersistResponse{Positions: res.Positions()}
	for _, ref := range res.Skipped {
		resp.Skipped = append(resp.Skipped, ref.Path)
	}
	return c.JSON(resp)
}

func (h *BoardHandler) CloseBoard(c *fiber.Ctx) error {
	id, err := paramUUID(c, "carousel")
	if err != nil {
		return badRequest(c, err.Error())
	}
	h.s.Close(GetUserID(c), id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BoardHandler) Preview(c *fiber.Ctx) error {
	f, ok := h.s.Preview(GetUserID(c), c.Params("handle"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Preview not found",
		})
	}
	c.Set(fiber.HeaderContentType, f.MimeType)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Send(f.Bytes)
}
