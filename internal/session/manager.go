package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"job-portal/internal/domain"
	"job-portal/internal/gateway"
	"job-portal/internal/metrics"
	"job-portal/internal/repair"
	"job-portal/internal/store"
)

// Snapshot es la vista publicada del estado de sesion.
type Snapshot struct {
	State          domain.LifecycleState `json:"-"`
	Token          string                `json:"-"`
	User           *domain.User          `json:"user,omitempty"`
	SessionExpired bool                  `json:"session_expired"`
}

func (s Snapshot) IsLoading() bool {
	return s.State.IsLoading()
}

// SignupInput agrupa los datos del registro; CompanyName y Skills son opcionales.
type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.Role
	Phone       string
	CompanyName string
	Skills      []string
	RememberMe  bool
}

// Manager es la maquina de estados de la sesion del cliente.
type Manager struct {
	logger  *zap.Logger
	gateway gateway.Gateway
	store   store.CredentialStore
	repair  *repair.Service
	metrics metrics.SessionMetrics

	mu             sync.Mutex
	state          domain.LifecycleState
	token          string
	user           *domain.User
	sessionExpired bool
	// epoch cambia en cada transicion iniciada por el usuario; los resultados
	// de una revalidacion solo se aplican si el epoch no cambio.
	epoch    uint64
	started  bool
	initDone chan struct{}
	subs     map[int]chan Snapshot
	nextSub  int
	disposed bool
}

func NewManager(
	logger *zap.Logger,
	gw gateway.Gateway,
	st store.CredentialStore,
	rp *repair.Service,
	m metrics.SessionMetrics,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	if rp == nil {
		rp = repair.NewService(logger, gw, st, m)
	}
	return &Manager{
		logger:   logger,
		gateway:  gw,
		store:    st,
		repair:   rp,
		metrics:  m,
		state:    domain.StateUninitialized,
		initDone: make(chan struct{}),
		subs:     make(map[int]chan Snapshot),
	}
}

// Initialize revalida la sesion persistida. Es idempotente: las llamadas
// posteriores esperan a que termine la primera y nunca revalidan de nuevo.
// No devuelve errores; las fallas terminan en un estado.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		done := m.initDone
		m.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}
	m.started = true
	m.mu.Unlock()

	defer close(m.initDone)
	m.revalidate(ctx)
}

func (m *Manager) revalidate(ctx context.Context) {
	creds, ok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("read stored credentials failed", zap.Error(err))
	}
	if err != nil || !ok || !creds.Complete() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state != domain.StateUninitialized {
			return
		}
		// Un registro parcial no sirve: token y usuario se borran juntos.
		if err != nil || ok {
			m.clearStoreLocked(ctx)
		}
		m.setStateLocked(domain.StateUnauthenticated)
		return
	}

	m.mu.Lock()
	if m.state != domain.StateUninitialized {
		m.mu.Unlock()
		return
	}
	epoch := m.epoch
	m.setStateLocked(domain.StateValidating)
	m.mu.Unlock()

	user, err := m.gateway.CurrentUser(ctx, creds.Token)
	if err != nil {
		status, _ := gateway.StatusOf(err)
		outcome := "failed"
		if status == 401 {
			outcome = "expired"
		}
		m.metrics.RecordAuthAttempt(string(opRevalidate), outcome)

		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.validatingAt(epoch) {
			m.logger.Debug("stale revalidation result dropped", zap.Error(err))
			return
		}
		if ctx.Err() != nil {
			// Cancelado desde afuera (apagado): el servidor no rechazo nada, se conserva lo guardado.
			m.logger.Info("session revalidation cancelled", zap.Error(ctx.Err()))
			m.token, m.user = "", nil
			m.setStateLocked(domain.StateUnauthenticated)
			return
		}
		m.clearStoreLocked(ctx)
		m.token, m.user = "", nil
		if status == 401 {
			m.logger.Info("stored session rejected", zap.Error(err))
			m.sessionExpired = true
			m.setStateLocked(domain.StateSessionExpired)
			return
		}
		m.logger.Warn("session revalidation failed", zap.Error(err), zap.Int("status", status))
		m.setStateLocked(domain.StateUnauthenticated)
		return
	}

	if m.stale(epoch) {
		return
	}
	user = m.runRepair(ctx, creds.Token, user)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validatingAt(epoch) {
		m.logger.Debug("stale revalidation result dropped")
		return
	}
	m.metrics.RecordAuthAttempt(string(opRevalidate), "ok")
	m.adoptLocked(ctx, creds.Token, user)
}

// Login autentica con email y password. Devuelve false sin error cuando la
// respuesta no trae token y usuario.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (bool, error) {
	resp, err := m.gateway.Login(ctx, strings.TrimSpace(email), password, rememberMe)
	if err != nil {
		return false, m.fail(opPassword, err)
	}
	if resp.Token == "" || resp.User == nil {
		m.logger.Warn("login response incomplete",
			zap.Bool("has_token", resp.Token != ""),
			zap.Bool("has_user", resp.User != nil),
		)
		m.metrics.RecordAuthAttempt(string(opPassword), "incomplete")
		return false, nil
	}

	user := m.runRepair(ctx, resp.Token, *resp.User)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptLocked(ctx, resp.Token, user)
	m.metrics.RecordAuthAttempt(string(opPassword), "ok")
	return true, nil
}

// RequestLoginCode pide al servidor que envie un codigo de un solo uso.
func (m *Manager) RequestLoginCode(ctx context.Context, email string) error {
	if err := m.gateway.RequestOTP(ctx, strings.TrimSpace(email)); err != nil {
		return m.fail(opOTPRequest, err)
	}
	m.metrics.RecordAuthAttempt(string(opOTPRequest), "ok")
	return nil
}

// LoginWithOTP verifica el codigo; solo adopta la sesion si el servidor
// reporta exito y trae token y usuario.
func (m *Manager) LoginWithOTP(ctx context.Context, email, code string) (bool, error) {
	resp, err := m.gateway.VerifyOTP(ctx, strings.TrimSpace(email), strings.TrimSpace(code))
	if err != nil {
		return false, m.fail(opOTP, err)
	}
	if !resp.Success || resp.Token == "" || resp.User == nil {
		m.logger.Warn("otp response not usable",
			zap.Bool("success", resp.Success),
			zap.Bool("has_token", resp.Token != ""),
			zap.Bool("has_user", resp.User != nil),
		)
		m.metrics.RecordAuthAttempt(string(opOTP), "incomplete")
		return false, nil
	}

	user := m.runRepair(ctx, resp.Token, *resp.User)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptLocked(ctx, resp.Token, user)
	m.metrics.RecordAuthAttempt(string(opOTP), "ok")
	return true, nil
}

// Signup registra la cuenta. Para empleadores se confia en el nombre de
// empresa enviado por el llamador si el servidor no lo devuelve.
func (m *Manager) Signup(ctx context.Context, in SignupInput) (bool, error) {
	if !in.Role.Valid() {
		m.metrics.RecordAuthAttempt(string(opSignup), strings.ToLower(string(domain.CodeInvalidInputData)))
		return false, domain.NewAuthError(domain.CodeInvalidInputData, domain.ErrInvalidInputData.Message, 0, nil)
	}
	companyName := strings.TrimSpace(in.CompanyName)
	resp, err := m.gateway.Register(ctx, gateway.RegisterPayload{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Password:    in.Password,
		Role:        in.Role,
		Phone:       strings.TrimSpace(in.Phone),
		CompanyName: companyName,
		Skills:      in.Skills,
		RememberMe:  in.RememberMe,
	})
	if err != nil {
		return false, m.fail(opSignup, err)
	}
	if resp.Token == "" || resp.User == nil {
		m.logger.Warn("signup response incomplete",
			zap.Bool("has_token", resp.Token != ""),
			zap.Bool("has_user", resp.User != nil),
		)
		m.metrics.RecordAuthAttempt(string(opSignup), "incomplete")
		return false, nil
	}

	user := *resp.User
	if in.Role == domain.RoleEmployer && companyName != "" {
		if strings.TrimSpace(user.CompanyName) == "" {
			user.CompanyName = companyName
		}
		m.repair.Remember(ctx, user.ID, companyName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptLocked(ctx, resp.Token, user)
	m.metrics.RecordAuthAttempt(string(opSignup), "ok")
	return true, nil
}

// Logout nunca falla: invalida en el servidor si puede y siempre limpia lo local.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token != "" {
		if err := m.gateway.Logout(ctx, token); err != nil {
			m.logger.Warn("remote logout failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.clearStoreLocked(ctx)
	m.token, m.user = "", nil
	m.sessionExpired = false
	m.setStateLocked(domain.StateUnauthenticated)
}

// HandleSessionExpired la usa cualquier llamador que detecte un 401 por su cuenta.
func (m *Manager) HandleSessionExpired(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.clearStoreLocked(ctx)
	m.token, m.user = "", nil
	m.sessionExpired = true
	m.setStateLocked(domain.StateSessionExpired)
}

// RefreshUser vuelve a pedir el usuario actual. Un 401 expira la sesion.
func (m *Manager) RefreshUser(ctx context.Context) (domain.User, error) {
	token, err := m.Token()
	if err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	user, err := m.gateway.CurrentUser(ctx, token)
	if err != nil {
		mapped := translate(opRefreshUser, err)
		if mapped.Code == domain.CodeSessionExpired {
			m.HandleSessionExpired(ctx)
		}
		return domain.User{}, mapped
	}
	user = m.runRepair(ctx, token, user)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || m.state != domain.StateAuthenticated {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	m.adoptLocked(ctx, token, user)
	return user, nil
}

// Token devuelve el token vigente para llamadas autenticadas ajenas al manager.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case domain.StateAuthenticated:
		return m.token, nil
	case domain.StateSessionExpired:
		return "", domain.ErrSessionExpired
	default:
		return "", domain.ErrNotAuthenticated
	}
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) State() domain.LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsLoading() bool {
	return m.State().IsLoading()
}

func (m *Manager) SessionExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionExpired
}

// User devuelve una copia del usuario actual.
func (m *Manager) User() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return domain.User{}, false
	}
	return cloneUser(*m.user), true
}

func (m *Manager) HasRole(r domain.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.user.Role == r
}

func (m *Manager) IsEmployee() bool { return m.HasRole(domain.RoleEmployee) }
func (m *Manager) IsEmployer() bool { return m.HasRole(domain.RoleEmployer) }
func (m *Manager) IsAdmin() bool    { return m.HasRole(domain.RoleAdmin) }

// Subscribe publica cada cambio de estado. El canal conserva solo el ultimo snapshot.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Snapshot, 1)
	if m.disposed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
}

// Dispose cierra las suscripciones. El estado persistido no se toca.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.disposed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Manager) fail(op operation, err error) error {
	mapped := translate(op, err)
	m.logger.Info("credential operation failed",
		zap.String("method", string(op)),
		zap.String("code", string(mapped.Code)),
		zap.Int("status", mapped.Status),
		zap.Error(err),
	)
	m.metrics.RecordAuthAttempt(string(op), strings.ToLower(string(mapped.Code)))
	return mapped
}

func (m *Manager) runRepair(ctx context.Context, token string, user domain.User) domain.User {
	if !user.NeedsCompanyName() {
		return user
	}
	res := m.repair.Repair(ctx, token, user)
	return res.User
}

func (m *Manager) stale(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.validatingAt(epoch)
}

func (m *Manager) validatingAt(epoch uint64) bool {
	return m.epoch == epoch && m.state == domain.StateValidating
}

func (m *Manager) adoptLocked(ctx context.Context, token string, user domain.User) {
	m.epoch++
	if err := m.store.Save(ctx, token, user); err != nil {
		m.logger.Warn("persist credentials failed", zap.Error(err))
	}
	u := cloneUser(user)
	m.token = token
	m.user = &u
	m.sessionExpired = false
	m.setStateLocked(domain.StateAuthenticated)
}

func (m *Manager) clearStoreLocked(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear stored credentials failed", zap.Error(err))
	}
}

func (m *Manager) setStateLocked(to domain.LifecycleState) {
	from := m.state
	m.state = to
	m.logger.Debug("session transition",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	m.metrics.RecordTransition(to.String())

	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          m.state,
		Token:          m.token,
		SessionExpired: m.sessionExpired,
	}
	if m.user != nil {
		u := cloneUser(*m.user)
		snap.User = &u
	}
	return snap
}

func cloneUser(u domain.User) domain.User {
	if u.Skills != nil {
		u.Skills = append([]string(nil), u.Skills...)
	}
	return u
}
