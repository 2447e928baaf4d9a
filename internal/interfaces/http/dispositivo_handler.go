package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// DispositivoHandler maneja los cupos de dispositivos de la empresa del caller.
type DispositivoHandler struct {
	lifecycle       *tenant.Lifecycle
	dispositivoRepo repository.DispositivoRepository
	empresaRepo     repository.EmpresaRepository
}

// NewDispositivoHandler construye el handler.
func NewDispositivoHandler(lifecycle *tenant.Lifecycle, dispositivoRepo repository.DispositivoRepository, empresaRepo repository.EmpresaRepository) *DispositivoHandler {
	return &DispositivoHandler{lifecycle: lifecycle, dispositivoRepo: dispositivoRepo, empresaRepo: empresaRepo}
}

// Register godoc
// @Summary      Registrar dispositivo
// @Description  Toma un cupo para el dispositivo; re-registrar solo refresca lastSeen.
// @Tags         devices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterDeviceRequest  true  "Dispositivo"
// @Success      200   {object}  dto.RegisterDeviceResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/devices/register [post]
func (h *DispositivoHandler) Register(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return respondError(c, domain.ErrForbidden)
	}
	var in dto.RegisterDeviceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	userAgent := in.UserAgent
	if userAgent == "" {
		userAgent = c.Get(fiber.HeaderUserAgent)
	}
	result, err := h.lifecycle.RegisterDevice(c.UserContext(), GetUserID(c), tenant.RegisterDeviceInput{
		EmpresaID: empresaID,
		DeviceID:  in.DeviceID,
		UID:       GetUserID(c),
		UserAgent: userAgent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RegisterDeviceResponse{Status: result.Status, Total: result.Total})
}

// Unregister godoc
// @Summary      Liberar cupo de dispositivo
// @Description  Idempotente: liberar un dispositivo no registrado no es un error.
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Param        deviceId  path  string  true  "Identificador del dispositivo"
// @Success      200  {object}  dto.StatusResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/devices/{deviceId} [delete]
func (h *DispositivoHandler) Unregister(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return respondError(c, domain.ErrForbidden)
	}
	if err := h.lifecycle.UnregisterDevice(c.UserContext(), GetUserID(c), empresaID, c.Params("deviceId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Status: tenant.StatusUnregistered})
}

// List godoc
// @Summary      Listar dispositivos activos
// @Description  Cupos ocupados de la empresa del caller, con el límite configurado.
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DispositivoListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/devices [get]
func (h *DispositivoHandler) List(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return respondError(c, domain.ErrForbidden)
	}
	empresa, err := h.empresaRepo.GetByID(c.UserContext(), empresaID)
	if err != nil {
		return respondError(c, err)
	}
	if empresa == nil {
		return respondError(c, domain.ErrEmpresaNotFound)
	}
	list, err := h.dispositivoRepo.ListByEmpresa(c.UserContext(), empresaID)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.DispositivoResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toDispositivoResponse(d))
	}
	return c.JSON(dto.DispositivoListResponse{
		Items: items,
		Total: len(items),
		Max:   empresa.MaxDispositivos,
	})
}

func toDispositivoResponse(d *entity.Dispositivo) dto.DispositivoResponse {
	return dto.DispositivoResponse{
		DeviceID:  d.DeviceID,
		UID:       d.UID,
		UserEmail: d.UserEmail,
		UserAgent: d.UserAgent,
		CreatedAt: d.CreatedAt,
		LastSeen:  d.LastSeen,
	}
}
