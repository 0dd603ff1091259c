package service

import (
	"context"
	"strings"
	"time"

	"taller/internal/apperror"
	"taller/internal/config"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	TokenAcceso   = "access"
	TokenRefresco = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// HashPassword hashes a plain password with the cost used for every user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByRUT(ctx, NormalizarRUT(req.RUT))
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("Credenciales inválidas")
		}
		return nil, apperror.Internal("auth.login", "usuario", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Credenciales inválidas")
	}
	if !user.Activo {
		return nil, apperror.Unauthorized("Usuario desactivado")
	}
	return s.emitirTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Unauthorized("Refresh token inválido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.Unauthorized("Refresh token inválido o expirado")
	}
	if tipo, _ := claims["tipo"].(string); tipo != TokenRefresco {
		return nil, apperror.Unauthorized("Refresh token inválido o expirado")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperror.Unauthorized("Refresh token inválido o expirado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("Usuario no encontrado")
		}
		return nil, apperror.Internal("auth.refresh", "usuario", err)
	}
	if !user.Activo {
		return nil, apperror.Unauthorized("Usuario desactivado")
	}
	return s.emitirTokens(user)
}

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apperror.Internal("auth.token", "usuario", err)
	}
	refreshToken, err := s.generateToken(user, TokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, apperror.Internal("auth.token", "usuario", err)
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rut := NormalizarRUT(req.RUT)
	if _, err := s.repo.FindByRUT(ctx, rut); err == nil {
		return nil, apperror.Conflictf("El RUT %s ya está registrado", rut)
	} else if !isNotFound(err) {
		return nil, apperror.Internal("usuario.crear", "usuario", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("usuario.crear", "usuario", err)
	}
	rol := req.Rol
	if rol == "" {
		rol = model.RolWorker
	}
	user := &model.Usuario{
		RUT:          rut,
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: hash,
		Rol:          rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflictf("El RUT %s ya está registrado", rut)
		}
		return nil, apperror.Internal("usuario.crear", "usuario", err)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	var users []model.Usuario
	var err error
	if incluirInactivos {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, apperror.Internal("usuario.listar", "usuario", err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Usuario no encontrado")
		}
		return nil, apperror.Internal("usuario.actualizar", "usuario", err)
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, apperror.Internal("usuario.actualizar", "usuario", err)
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.Internal("usuario.actualizar", "usuario", err)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, false)
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, true)
}

func (s *authService) setActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Usuario no encontrado")
		}
		return apperror.Internal("usuario.activo", "usuario", err)
	}
	return nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"rut":     user.RUT,
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"tipo":    tipo,
		"exp":     time.Now().Add(duration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:     u.ID.String(),
		RUT:    u.RUT,
		Nombre: u.Nombre,
		Rol:    u.Rol,
		Activo: u.Activo,
	}
}
