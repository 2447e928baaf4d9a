package tenant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// CrearEmpresaInput datos para el alta de una empresa.
type CrearEmpresaInput struct {
	Nombre  string
	NIT     string
	LogoURL string
}

// CrearEmpresaUseCase crea la empresa y vincula al creador como admin en una
// sola transacción (el equivalente del batch atómico del flujo original):
// la empresa nace sin cupos ocupados, con el creador como owner y admin.
type CrearEmpresaUseCase struct {
	txRunner        TxRunner
	maxDispositivos int
}

// NewCrearEmpresaUseCase construye el caso de uso.
// maxDispositivos es el cupo de dispositivos con el que nacen las empresas.
func NewCrearEmpresaUseCase(txRunner TxRunner, maxDispositivos int) *CrearEmpresaUseCase {
	return &CrearEmpresaUseCase{txRunner: txRunner, maxDispositivos: maxDispositivos}
}

// Crear da de alta la empresa y vincula al creador.
// Falla con ErrAlreadyInCompany si el caller ya pertenece a otra empresa.
func (uc *CrearEmpresaUseCase) Crear(ctx context.Context, callerUID string, in CrearEmpresaInput) (*entity.Empresa, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if callerUID == "" || nombre == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	empresa := &entity.Empresa{
		ID:              uuid.New().String(),
		Nombre:          nombre,
		NIT:             strings.TrimSpace(in.NIT),
		LogoURL:         strings.TrimSpace(in.LogoURL),
		Suspended:       false,
		OwnerUID:        callerUID,
		Admins:          []string{callerUID},
		MaxDispositivos: uc.maxDispositivos,
		DevicesCount:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := uc.txRunner.Run(ctx, func(
		empresaRepo repository.EmpresaRepository,
		_ repository.DispositivoRepository,
		usuarioRepo repository.UsuarioRepository,
	) error {
		usuario, err := usuarioRepo.GetByUID(ctx, callerUID)
		if err != nil {
			return err
		}
		if usuario == nil {
			return domain.ErrUserNotFound
		}
		if usuario.EmpresaID != "" {
			return domain.ErrAlreadyInCompany
		}

		if err := empresaRepo.Create(ctx, empresa); err != nil {
			return err
		}
		return usuarioRepo.SetEmpresa(ctx, callerUID, empresa.ID, entity.RoleAdmin, now)
	})
	if err != nil {
		return nil, err
	}
	return empresa, nil
}
