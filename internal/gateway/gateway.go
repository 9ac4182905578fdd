package gateway

import (
	"context"
	"errors"
	"fmt"

	"job-portal/internal/domain"
)

// Gateway es el contrato que el SessionManager espera de la API remota.
type Gateway interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (AuthResponse, error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (OTPResponse, error)
	Register(ctx context.Context, payload RegisterPayload) (AuthResponse, error)
	CurrentUser(ctx context.Context, token string) (domain.User, error)
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (domain.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthResponse puede venir incompleta; el llamador decide que hacer con eso.
type AuthResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type OTPResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

type RegisterPayload struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
	Phone       string      `json:"phone,omitempty"`
	CompanyName string      `json:"company_name,omitempty"`
	Skills      []string    `json:"skills,omitempty"`
	RememberMe  bool        `json:"remember_me,omitempty"`
}

// ProfileUpdate lleva solo los campos a modificar.
type ProfileUpdate struct {
	Name        *string  `json:"name,omitempty"`
	CompanyName *string  `json:"company_name,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// StatusNoConnection se reserva para fallos sin respuesta del servidor.
const StatusNoConnection = 0

// Error es la falla de transporte: codigo de estado y mensaje opcional.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway status=%d: %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway status=%d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("gateway status=%d", e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf extrae el codigo de transporte; los errores ajenos cuentan como sin conexion.
func StatusOf(err error) (int, string) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Status, ge.Message
	}
	return StatusNoConnection, ""
}
