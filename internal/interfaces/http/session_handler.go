package http

import (
	"github.com/gofiber/fiber/v2"

	appauth "github.com/ordexa/ordexa-api/internal/application/auth"
	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// Header con el identificador estable del dispositivo, generado por el cliente.
const HeaderDeviceID = "X-Device-Id"

// SessionHandler expone el contexto de tenant de la sesión actual. La sesión
// pasa por la máquina de estados del resolutor: el estado dice qué puede hacer
// la UI, y en DEVICE_BLOCKED la respuesta incluye la empresa con su uso de
// cupos y el mensaje para el usuario.
type SessionHandler struct {
	resolver *tenant.Resolver
}

// NewSessionHandler construye el handler.
func NewSessionHandler(resolver *tenant.Resolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// Get godoc
// @Summary      Contexto de sesión
// @Description  Resuelve membresía y empresa, y asegura el cupo del dispositivo actual.
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Param        X-Device-Id  header  string  true  "Identificador estable del dispositivo"
// @Success      200  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	deviceID := c.Get(HeaderDeviceID)
	if deviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_DEVICE_ID", Message: "header " + HeaderDeviceID + " requerido"})
	}
	ctxTenant, err := h.resolver.Resolve(c.UserContext(), GetUserID(c), deviceID, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionResponse(ctxTenant))
}

// SignOut godoc
// @Summary      Cerrar sesión
// @Description  Libera el cupo del dispositivo actual (best-effort) antes de descartar el token.
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Param        X-Device-Id  header  string  false  "Identificador estable del dispositivo"
// @Success      200  {object}  dto.StatusResponse
// @Router       /api/session/signout [post]
func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	h.resolver.SignOut(c.UserContext(), GetUserID(c), c.Get(HeaderDeviceID))
	return c.JSON(dto.StatusResponse{Status: "signed-out"})
}

func toSessionResponse(t *tenant.TenantContext) dto.SessionResponse {
	return dto.SessionResponse{
		State:       string(t.State),
		Usuario:     appauth.ToUsuarioResponse(t.Usuario),
		Empresa:     toEmpresaResponse(t.Empresa),
		DeviceError: t.DeviceError,
	}
}

func toEmpresaResponse(e *entity.Empresa) *dto.EmpresaResponse {
	if e == nil {
		return nil
	}
	return &dto.EmpresaResponse{
		ID:                 e.ID,
		Nombre:             e.Nombre,
		NIT:                e.NIT,
		LogoURL:            e.LogoURL,
		Suspended:          e.Suspended,
		SuspendedUpdatedAt: e.SuspendedUpdatedAt,
		OwnerUID:           e.OwnerUID,
		Admins:             e.Admins,
		MaxDispositivos:    e.MaxDispositivos,
		DevicesCount:       e.DevicesCount,
		CreatedAt:          e.CreatedAt,
	}
}
