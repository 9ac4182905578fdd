package domain

// LifecycleState es el estado del ciclo de vida de la sesion del cliente.
type LifecycleState int

const (
	StateUninitialized LifecycleState = iota
	StateValidating
	StateAuthenticated
	StateUnauthenticated
	StateSessionExpired
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// IsLoading es verdadero mientras no hay decision de acceso posible.
func (s LifecycleState) IsLoading() bool {
	return s == StateUninitialized || s == StateValidating
}

// Credentials es el par token/usuario persistido por el CredentialStore.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Complete indica si el par puede usarse para revalidar una sesion.
func (c Credentials) Complete() bool {
	return c.Token != "" && c.User.ID != ""
}
