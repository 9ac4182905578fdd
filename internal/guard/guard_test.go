package guard

import (
	"testing"

	"job-portal/internal/domain"
)

func TestEvaluate_LoadingStates(t *testing.T) {
	for _, st := range []domain.LifecycleState{domain.StateUninitialized, domain.StateValidating} {
		d := Evaluate(Input{State: st, RequiredRole: domain.RoleAdmin, CurrentPath: "/admin"})
		if d.Kind != KindLoading || d.Location != "" {
			t.Fatalf("state %v: expected loading, got %+v", st, d)
		}
	}
}

func TestEvaluate_UnauthenticatedRedirectsWithNext(t *testing.T) {
	for _, st := range []domain.LifecycleState{domain.StateUnauthenticated, domain.StateSessionExpired} {
		d := Evaluate(Input{State: st, CurrentPath: "/employer/jobs?page=2"})
		if d.Kind != KindRedirect {
			t.Fatalf("expected redirect, got %+v", d)
		}
		want := "/login?next=%2Femployer%2Fjobs%3Fpage%3D2"
		if d.Location != want {
			t.Fatalf("expected %q, got %q", want, d.Location)
		}
	}
}

func TestEvaluate_UnsafeNextIsDropped(t *testing.T) {
	d := Evaluate(Input{State: domain.StateUnauthenticated, CurrentPath: "//evil.example/x"})
	if d.Location != SignInPath {
		t.Fatalf("expected bare sign-in path, got %q", d.Location)
	}
}

// Ir al home del rol requerido volveria a chocar con el mismo guard y entraria en bucle.
func TestEvaluate_RoleMismatchRedirectsToOwnHomeNotRequiredHome(t *testing.T) {
	user := &domain.User{ID: "1", Role: domain.RoleEmployee}
	d := Evaluate(Input{State: domain.StateAuthenticated, User: user, RequiredRole: domain.RoleEmployer, CurrentPath: "/employer/jobs"})
	if d.Kind != KindRedirect || d.Location != "/employee/dashboard" {
		t.Fatalf("expected redirect to employee home, got %+v", d)
	}
	if d.Location == SignInPath {
		t.Fatalf("role mismatch must never go to sign-in")
	}
	if d.Location == HomePath(domain.RoleEmployer) {
		t.Fatalf("redirect to the required role's home would loop")
	}
	// El home propio se renderiza sin otra redireccion.
	again := Evaluate(Input{State: domain.StateAuthenticated, User: user, RequiredRole: domain.RoleEmployee, CurrentPath: d.Location})
	if again.Kind != KindRender {
		t.Fatalf("expected own home to render, got %+v", again)
	}
}

func TestEvaluate_Render(t *testing.T) {
	user := &domain.User{ID: "1", Role: domain.RoleEmployer}
	if d := Evaluate(Input{State: domain.StateAuthenticated, User: user, RequiredRole: domain.RoleEmployer}); d.Kind != KindRender {
		t.Fatalf("expected render, got %+v", d)
	}
	if d := Evaluate(Input{State: domain.StateAuthenticated, User: user}); d.Kind != KindRender {
		t.Fatalf("expected render without required role, got %+v", d)
	}
}

func TestHomePath_CoversAllRoles(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range domain.Roles() {
		p := HomePath(r)
		if p == "" || seen[p] {
			t.Fatalf("role %s: bad or duplicated home %q", r, p)
		}
		seen[p] = true
	}
}

func TestReturnTarget(t *testing.T) {
	if got := ReturnTarget("/employer/jobs/7", domain.RoleEmployer); got != "/employer/jobs/7" {
		t.Fatalf("expected next path, got %q", got)
	}
	if got := ReturnTarget("https://evil.example", domain.RoleAdmin); got != "/admin/dashboard" {
		t.Fatalf("expected admin home, got %q", got)
	}
	if got := ReturnTarget("", domain.RoleEmployee); got != "/employee/dashboard" {
		t.Fatalf("expected employee home, got %q", got)
	}
}
