package domain

import (
	"strings"
	"time"
)

// Role identifica el tipo de cuenta dentro del marketplace.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// Roles devuelve todos los roles conocidos.
func Roles() []Role {
	return []Role{RoleEmployee, RoleEmployer, RoleAdmin}
}

// ParseRole normaliza un rol recibido como texto.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	CompanyName string    `json:"company_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsEmployer indica si la cuenta publica ofertas.
func (u User) IsEmployer() bool {
	return u.Role == RoleEmployer
}

// NeedsCompanyName indica si el perfil de empleador quedo sin nombre de empresa.
func (u User) NeedsCompanyName() bool {
	return u.IsEmployer() && strings.TrimSpace(u.CompanyName) == ""
}
