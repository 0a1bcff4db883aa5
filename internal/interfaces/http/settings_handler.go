package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/application/dto"
)

// SettingsHandler ajustes por defecto y mantenimiento del almacenamiento.
type SettingsHandler struct {
	uc *devis.SettingsUseCase
}

// NewSettingsHandler construye el handler de ajustes.
func NewSettingsHandler(uc *devis.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// GetCompany godoc
// @Summary      Empresa por defecto
// @Tags         settings
// @Produce      json
// @Success      200  {object}  entity.Company
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settings/company [get]
func (h *SettingsHandler) GetCompany(c *fiber.Ctx) error {
	out, err := h.uc.GetCompany(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PutCompany godoc
// @Summary      Guardar empresa por defecto
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompanyRequest  true  "Datos de la empresa"
// @Success      200   {object}  entity.Company
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/company [put]
func (h *SettingsHandler) PutCompany(c *fiber.Ctx) error {
	var in dto.CompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SaveCompany(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetConditions godoc
// @Summary      Condiciones por defecto
// @Tags         settings
// @Produce      json
// @Success      200  {object}  entity.Conditions
// @Router       /api/settings/conditions [get]
func (h *SettingsHandler) GetConditions(c *fiber.Ctx) error {
	out, err := h.uc.GetConditions(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PutConditions godoc
// @Summary      Guardar condiciones por defecto
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConditionsRequest  true  "Condiciones"
// @Success      200   {object}  entity.Conditions
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/conditions [put]
func (h *SettingsHandler) PutConditions(c *fiber.Ctx) error {
	var in dto.ConditionsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SaveConditions(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetLegalNotices godoc
// @Summary      Menciones legales personalizadas
// @Tags         settings
// @Produce      json
// @Success      200  {object}  dto.LegalNoticesRequest
// @Router       /api/settings/legal-notices [get]
func (h *SettingsHandler) GetLegalNotices(c *fiber.Ctx) error {
	out, err := h.uc.GetLegalNotices(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LegalNoticesRequest{Notices: out})
}

// PutLegalNotices godoc
// @Summary      Guardar menciones legales personalizadas
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LegalNoticesRequest  true  "Menciones"
// @Success      200   {object}  dto.LegalNoticesRequest
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/legal-notices [put]
func (h *SettingsHandler) PutLegalNotices(c *fiber.Ctx) error {
	var in dto.LegalNoticesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SaveLegalNotices(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LegalNoticesRequest{Notices: out})
}

// Usage godoc
// @Summary      Uso del almacenamiento
// @Tags         storage
// @Produce      json
// @Success      200  {object}  storage.Usage
// @Router       /api/storage/usage [get]
func (h *SettingsHandler) Usage(c *fiber.Ctx) error {
	out, err := h.uc.Usage(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar snapshot JSON
// @Tags         storage
// @Produce      json
// @Success      200  {file}  file
// @Router       /api/storage/export [get]
func (h *SettingsHandler) Export(c *fiber.Ctx) error {
	data, err := h.uc.Export(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment("devis_" + time.Now().Format("2006-01-02") + ".json")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(data)
}

// Import godoc
// @Summary      Importar snapshot JSON
// @Description  Exige la clave "quotes". Un snapshot inválido no modifica los datos.
// @Tags         storage
// @Accept       json
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      507  {object}  dto.ErrorResponse
// @Router       /api/storage/import [post]
func (h *SettingsHandler) Import(c *fiber.Ctx) error {
	if err := h.uc.Import(c.UserContext(), c.Body()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Sweep godoc
// @Summary      Aplicar la política de retención
// @Tags         storage
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Router       /api/storage/sweep [post]
func (h *SettingsHandler) Sweep(c *fiber.Ctx) error {
	out, err := h.uc.Sweep(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
