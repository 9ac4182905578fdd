// Package guard decide si una vista con rol requerido puede renderizarse.
package guard

import (
	"fmt"
	"net/url"
	"strings"

	"job-portal/internal/domain"
)

const (
	SignInPath = "/login"
	NextParam  = "next"
)

// HomePath es la unica tabla rol -> vista de inicio.
func HomePath(r domain.Role) string {
	switch r {
	case domain.RoleEmployee:
		return "/employee/dashboard"
	case domain.RoleEmployer:
		return "/employer/dashboard"
	case domain.RoleAdmin:
		return "/admin/dashboard"
	}
	panic(fmt.Sprintf("guard: no home path for role %q", r))
}

type Kind int

const (
	KindLoading Kind = iota
	KindRedirect
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRedirect:
		return "redirect"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind     Kind
	Location string
}

type Input struct {
	State        domain.LifecycleState
	User         *domain.User
	RequiredRole domain.Role
	CurrentPath  string
}

// Evaluate es una funcion pura del estado de sesion y la vista pedida.
func Evaluate(in Input) Decision {
	switch in.State {
	case domain.StateUninitialized, domain.StateValidating:
		return Decision{Kind: KindLoading}
	case domain.StateAuthenticated:
		if in.User == nil {
			return signIn(in.CurrentPath)
		}
		if in.RequiredRole != "" && in.User.Role != in.RequiredRole {
			if !in.User.Role.Valid() {
				return signIn(in.CurrentPath)
			}
			// Al home del propio rol: el home del rol requerido vuelve a exigir ese rol.
			return Decision{Kind: KindRedirect, Location: HomePath(in.User.Role)}
		}
		return Decision{Kind: KindRender}
	default:
		return signIn(in.CurrentPath)
	}
}

func signIn(attempted string) Decision {
	loc := SignInPath
	if p, ok := SafeReturnPath(attempted); ok && p != "" && p != SignInPath {
		loc += "?" + url.Values{NextParam: []string{p}}.Encode()
	}
	return Decision{Kind: KindRedirect, Location: loc}
}

// SafeReturnPath acepta solo rutas relativas al sitio.
func SafeReturnPath(p string) (string, bool) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", true
	}
	if !strings.HasPrefix(p, "/") {
		return "", false
	}
	if strings.HasPrefix(p, "//") || strings.Contains(p, "://") || strings.Contains(p, `\`) {
		return "", false
	}
	return p, true
}

// ReturnTarget elige a donde volver tras un login exitoso.
func ReturnTarget(next string, role domain.Role) string {
	if p, ok := SafeReturnPath(next); ok && p != "" && p != SignInPath {
		return p
	}
	if !role.Valid() {
		return "/"
	}
	return HomePath(role)
}
