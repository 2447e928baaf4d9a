package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
	"github.com/ordexa/ordexa-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
// El registro crea la identidad sin empresa; la membresía llega después,
// al crear una empresa o unirse a una existente.
type AuthUseCase struct {
	usuarioRepo repository.UsuarioRepository
	empresaRepo repository.EmpresaRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(usuarioRepo repository.UsuarioRepository, empresaRepo repository.EmpresaRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{usuarioRepo: usuarioRepo, empresaRepo: empresaRepo, jwtCfg: jwtCfg}
}

// Signup crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está en uso.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.UsuarioResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.usuarioRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		nombre = email
	}
	now := time.Now()
	usuario := &entity.Usuario{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Nombre:       nombre,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.usuarioRepo.Create(ctx, usuario); err != nil {
		return nil, err
	}
	return ToUsuarioResponse(usuario), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Los miembros de una empresa suspendida no pueden iniciar sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	usuario, err := uc.usuarioRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	if usuario.EmpresaID != "" {
		empresa, err := uc.empresaRepo.GetByID(ctx, usuario.EmpresaID)
		if err != nil {
			return nil, err
		}
		if empresa != nil && empresa.Suspended {
			return nil, domain.ErrEmpresaSuspended
		}
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, usuario.UID, usuario.EmpresaID, usuario.Rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:   token,
		Usuario: *ToUsuarioResponse(usuario),
	}, nil
}

// ToUsuarioResponse proyecta la entidad a su DTO público (sin el hash).
func ToUsuarioResponse(u *entity.Usuario) *dto.UsuarioResponse {
	if u == nil {
		return nil
	}
	return &dto.UsuarioResponse{
		UID:           u.UID,
		Email:         u.Email,
		Nombre:        u.Nombre,
		EmpresaID:     u.EmpresaID,
		Rol:           u.Rol,
		EmailVerified: u.EmailVerified,
		JoinedAt:      u.JoinedAt,
		CreatedAt:     u.CreatedAt,
	}
}
