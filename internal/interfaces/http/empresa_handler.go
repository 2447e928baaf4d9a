package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// EmpresaHandler maneja alta, consulta, vinculación y suspensión de empresas.
type EmpresaHandler struct {
	crearUC     *tenant.CrearEmpresaUseCase
	lifecycle   *tenant.Lifecycle
	empresaRepo repository.EmpresaRepository
}

// NewEmpresaHandler construye el handler.
func NewEmpresaHandler(crearUC *tenant.CrearEmpresaUseCase, lifecycle *tenant.Lifecycle, empresaRepo repository.EmpresaRepository) *EmpresaHandler {
	return &EmpresaHandler{crearUC: crearUC, lifecycle: lifecycle, empresaRepo: empresaRepo}
}

// Create godoc
// @Summary      Crear empresa
// @Description  Crea la empresa y vincula al caller como admin en la misma transacción.
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearEmpresaRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.EmpresaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/empresas [post]
func (h *EmpresaHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearEmpresaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	empresa, err := h.crearUC.Crear(c.UserContext(), GetUserID(c), tenant.CrearEmpresaInput{
		Nombre:  in.Nombre,
		NIT:     in.NIT,
		LogoURL: in.LogoURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEmpresaResponse(empresa))
}

// GetByID godoc
// @Summary      Obtener empresa
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.EmpresaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id} [get]
func (h *EmpresaHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	empresa, err := h.empresaRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if empresa == nil {
		return respondError(c, domain.ErrEmpresaNotFound)
	}
	// Solo los miembros ven los detalles de su empresa.
	if GetEmpresaID(c) != id {
		return respondError(c, domain.ErrForbidden)
	}
	return c.JSON(toEmpresaResponse(empresa))
}

// Join godoc
// @Summary      Unirse a una empresa
// @Description  Vincula al caller como vendedor respetando el límite de usuarios.
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.JoinEmpresaRequest  true  "Empresa objetivo"
// @Success      200   {object}  dto.StatusResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/empresas/join [post]
func (h *EmpresaHandler) Join(c *fiber.Ctx) error {
	var in dto.JoinEmpresaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	status, err := h.lifecycle.JoinCompany(c.UserContext(), GetUserID(c), in.EmpresaID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Status: status})
}

// Suspend godoc
// @Summary      Suspender o reactivar empresa
// @Description  Solo owner o admins. Suspender revoca las sesiones de todos los miembros.
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.SuspendRequest  true  "Estado deseado"
// @Success      200   {object}  dto.StatusResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/suspend [put]
func (h *EmpresaHandler) Suspend(c *fiber.Ctx) error {
	var in dto.SuspendRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.lifecycle.SetSuspended(c.UserContext(), GetUserID(c), c.Params("id"), in.Suspended); err != nil {
		return respondError(c, err)
	}
	status := "reactivated"
	if in.Suspended {
		status = "suspended"
	}
	return c.JSON(dto.StatusResponse{Status: status})
}
