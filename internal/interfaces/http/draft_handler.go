package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

// DraftHandler borrador único en edición.
type DraftHandler struct {
	uc  *devis.DraftUseCase
	pdf *devis.PDFUseCase
}

// NewDraftHandler construye el handler del borrador.
func NewDraftHandler(uc *devis.DraftUseCase, pdf *devis.PDFUseCase) *DraftHandler {
	return &DraftHandler{uc: uc, pdf: pdf}
}

// Get godoc
// @Summary      Obtener el borrador
// @Tags         draft
// @Produce      json
// @Success      200  {object}  entity.QuoteDraft
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/draft [get]
func (h *DraftHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Put godoc
// @Summary      Editar el borrador (autoguardado diferido)
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        body  body  entity.QuoteDraft  true  "Borrador, puede estar incompleto"
// @Success      202   {object}  dto.TotalsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/draft [put]
func (h *DraftHandler) Put(c *fiber.Ctx) error {
	var in entity.QuoteDraft
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return c.Status(fiber.StatusAccepted).JSON(h.uc.Edit(in))
}

// Delete godoc
// @Summary      Descartar el borrador
// @Tags         draft
// @Success      204
// @Router       /api/draft [delete]
func (h *DraftHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Discard(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Flush godoc
// @Summary      Guardar ya el borrador pendiente
// @Tags         draft
// @Success      204
// @Failure      507  {object}  dto.ErrorResponse
// @Router       /api/draft/flush [post]
func (h *DraftHandler) Flush(c *fiber.Ctx) error {
	if err := h.uc.Flush(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Vista previa PDF del borrador
// @Description  Sin cuerpo se usa el borrador guardado.
// @Tags         draft
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  entity.QuoteDraft  false  "Borrador a previsualizar"
// @Success      200   {file}    file
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/draft/pdf [post]
func (h *DraftHandler) PDF(c *fiber.Ctx) error {
	var d entity.QuoteDraft
	if len(c.Body()) == 0 {
		stored, err := h.uc.Get(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		d = *stored
	} else if err := c.BodyParser(&d); err != nil {
		return invalidBody(c)
	}
	data, err := h.pdf.PreviewPDF(c.UserContext(), d)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment("devis_apercu.pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}
