package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/application/dto"
)

// QuoteHandler maneja las peticiones HTTP del recurso Quote.
type QuoteHandler struct {
	uc  *devis.QuoteUseCase
	pdf *devis.PDFUseCase
	ubl *devis.UBLUseCase
}

// NewQuoteHandler construye el handler inyectando los casos de uso.
func NewQuoteHandler(uc *devis.QuoteUseCase, pdf *devis.PDFUseCase, ubl *devis.UBLUseCase) *QuoteHandler {
	return &QuoteHandler{uc: uc, pdf: pdf, ubl: ubl}
}

// List godoc
// @Summary      Listar presupuestos
// @Tags         quotes
// @Produce      json
// @Param        status      query  string  false  "Estado efectivo"
// @Param        q           query  string  false  "Texto (número, cliente, objeto, empresa)"
// @Param        from        query  string  false  "Emitido desde (YYYY-MM-DD)"
// @Param        to          query  string  false  "Emitido hasta (YYYY-MM-DD)"
// @Param        min_amount  query  string  false  "Importe TTC mínimo"
// @Param        max_amount  query  string  false  "Importe TTC máximo"
// @Param        sort        query  string  false  "date, number, client, amount"
// @Param        order       query  string  false  "asc, desc"
// @Success      200  {array}   dto.QuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/quotes [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	var f dto.QuoteListFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear presupuesto
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuoteRequest  true  "Datos del presupuesto"
// @Success      201   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      507   {object}  dto.ErrorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de presupuestos
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  dto.QuoteStatsResponse
// @Router       /api/quotes/stats [get]
func (h *QuoteHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener presupuesto por ID
// @Tags         quotes
// @Produce      json
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      200  {object}  dto.QuoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar presupuesto
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del presupuesto"
// @Param        body  body  dto.QuoteRequest  true  "Datos del presupuesto"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [put]
func (h *QuoteHandler) Update(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del presupuesto"
// @Param        body  body  dto.StatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/status [patch]
func (h *QuoteHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar presupuesto
// @Tags         quotes
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Duplicate godoc
// @Summary      Duplicar en el borrador
// @Tags         quotes
// @Produce      json
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      201  {object}  entity.QuoteDraft
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/duplicate [post]
func (h *QuoteHandler) Duplicate(c *fiber.Ctx) error {
	out, err := h.uc.Duplicate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PDF godoc
// @Summary      Descargar PDF
// @Tags         quotes
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.QuotePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

// UBL godoc
// @Summary      Descargar XML UBL 2.1 (Quotation)
// @Tags         quotes
// @Produce      application/xml
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/ubl [get]
func (h *QuoteHandler) UBL(c *fiber.Ctx) error {
	data, filename, err := h.ubl.QuoteXML(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(data)
}

// Totals godoc
// @Summary      Vista previa de totales
// @Tags         totals
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TotalsRequest  true  "Líneas y porcentaje de anticipo"
// @Success      200   {object}  dto.TotalsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/totals [post]
func (h *QuoteHandler) Totals(c *fiber.Ctx) error {
	var in dto.TotalsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return c.JSON(h.uc.ComputeTotals(in))
}
