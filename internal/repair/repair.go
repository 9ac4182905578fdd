package repair

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"job-portal/internal/domain"
	"job-portal/internal/gateway"
	"job-portal/internal/metrics"
)

// FallbackCompanyName se usa cuando el email no tiene dominio.
const FallbackCompanyName = "My Company"

const companySuffix = " Solutions"

// Outcome resume que hizo la reparacion.
type Outcome string

const (
	OutcomeNotNeeded      Outcome = "not_needed"
	OutcomeApplied        Outcome = "applied"
	OutcomeCachedFallback Outcome = "cached_fallback"
	OutcomeSkipped        Outcome = "skipped"
)

// Provenance indica de donde salio el nombre de empresa.
type Provenance string

const (
	FromResponse  Provenance = "from_response"
	FromHeuristic Provenance = "from_heuristic"
	FromCache     Provenance = "from_cache"
	FromNone      Provenance = "none"
)

type Result struct {
	Outcome     Outcome
	Provenance  Provenance
	CompanyName string
	User        domain.User
	// Err guarda la falla absorbida, solo para diagnostico.
	Err error
}

// ProfileUpdater persiste el nombre reparado en el perfil remoto.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, token string, update gateway.ProfileUpdate) (domain.User, error)
}

// CompanyCache es el slot auxiliar del CredentialStore.
type CompanyCache interface {
	CacheCompanyName(ctx context.Context, userID, name string) error
	CachedCompanyName(ctx context.Context, userID string) (string, bool, error)
}

// Service reconstruye el nombre de empresa de un empleador cuando falta.
type Service struct {
	logger  *zap.Logger
	updater ProfileUpdater
	cache   CompanyCache
	metrics metrics.SessionMetrics
}

func NewService(logger *zap.Logger, updater ProfileUpdater, cache CompanyCache, m metrics.SessionMetrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{
		logger:  logger,
		updater: updater,
		cache:   cache,
		metrics: m,
	}
}

// DeriveCompanyName arma un nombre a partir del primer label del dominio del email.
func DeriveCompanyName(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) < 2 {
		return FallbackCompanyName
	}
	label := strings.Split(parts[1], ".")[0]
	if label == "" {
		return FallbackCompanyName
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + strings.ToLower(label[size:]) + companySuffix
}

// Repair nunca falla: cualquier error queda logueado y en Result.Err.
func (s *Service) Repair(ctx context.Context, token string, user domain.User) Result {
	res := s.repair(ctx, token, user)
	s.metrics.RecordRepair(string(res.Outcome))
	return res
}

func (s *Service) repair(ctx context.Context, token string, user domain.User) Result {
	if !user.IsEmployer() {
		return Result{Outcome: OutcomeNotNeeded, Provenance: FromNone, User: user}
	}
	if !user.NeedsCompanyName() {
		return Result{Outcome: OutcomeNotNeeded, Provenance: FromResponse, CompanyName: user.CompanyName, User: user}
	}

	derived := DeriveCompanyName(user.Email)
	var updateErr error
	if s.updater != nil {
		updated, err := s.updater.UpdateProfile(ctx, token, gateway.ProfileUpdate{CompanyName: &derived})
		if err == nil {
			if updated.ID == user.ID && strings.TrimSpace(updated.CompanyName) != "" {
				user = updated
			} else {
				user.CompanyName = derived
			}
			s.cacheName(ctx, user.ID, user.CompanyName)
			s.logger.Info("company name repaired",
				zap.String("user_id", user.ID),
				zap.String("company_name", user.CompanyName),
			)
			return Result{Outcome: OutcomeApplied, Provenance: FromHeuristic, CompanyName: user.CompanyName, User: user}
		}
		updateErr = err
		s.logger.Warn("company name repair persist failed", zap.Error(err), zap.String("user_id", user.ID))
	}

	if cached, ok := s.cachedName(ctx, user.ID); ok {
		user.CompanyName = cached
		return Result{Outcome: OutcomeCachedFallback, Provenance: FromCache, CompanyName: cached, User: user, Err: updateErr}
	}
	return Result{Outcome: OutcomeSkipped, Provenance: FromNone, User: user, Err: updateErr}
}

// Remember guarda un nombre conocido para futuras reparaciones.
func (s *Service) Remember(ctx context.Context, userID, name string) {
	s.cacheName(ctx, userID, name)
}

func (s *Service) cacheName(ctx context.Context, userID, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheCompanyName(ctx, userID, name); err != nil {
		s.logger.Warn("cache company name failed", zap.Error(err), zap.String("user_id", userID))
	}
}

func (s *Service) cachedName(ctx context.Context, userID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	name, ok, err := s.cache.CachedCompanyName(ctx, userID)
	if err != nil {
		s.logger.Warn("read cached company name failed", zap.Error(err), zap.String("user_id", userID))
		return "", false
	}
	return name, ok && strings.TrimSpace(name) != ""
}
