package devapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"job-portal/internal/domain"
	"job-portal/internal/email"
	"job-portal/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	ErrOTPNotRequested    = errors.New("otp not requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
)

const minPasswordLength = 8

// AccountService coordina las reglas de negocio de cuentas de la API de desarrollo.
type AccountService struct {
	logger     *zap.Logger
	accounts   repository.AccountRepository
	sender     email.Sender
	otpLimiter OTPRateLimiter
	now        func() time.Time
}

func NewAccountService(logger *zap.Logger, accounts repository.AccountRepository, sender email.Sender, otpLimiter OTPRateLimiter) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &AccountService{
		logger:     logger,
		accounts:   accounts,
		sender:     sender,
		otpLimiter: otpLimiter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.Role
	Phone       string
	CompanyName string
	Skills      []string
}

// ProfileChanges lleva los campos editables; nil significa sin cambio.
type ProfileChanges struct {
	Name        *string
	CompanyName *string
	Phone       *string
	Skills      []string
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	password := strings.TrimSpace(input.Password)
	if name == "" || !strings.Contains(emailAddr, "@") || len(password) < minPasswordLength || !input.Role.Valid() {
		return domain.User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	acc := domain.Account{
		User: domain.User{
			ID:          uuid.NewString(),
			Email:       emailAddr,
			Name:        name,
			Role:        input.Role,
			CompanyName: strings.TrimSpace(input.CompanyName),
			Phone:       strings.TrimSpace(input.Phone),
			Skills:      input.Skills,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	s.logger.Info("account registered", zap.String("user_id", acc.ID), zap.String("role", acc.Role.String()))
	return acc.User, nil
}

func (s *AccountService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	acc, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if acc.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if acc.Disabled {
		return domain.User{}, ErrAccountDisabled
	}
	return acc.User, nil
}

func (s *AccountService) RequestOTP(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidInput
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	acc, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	code, hash, expiresAt, err := generateOTP(s.now())
	if err != nil {
		return err
	}
	acc.OtpCodeHash = hash
	acc.OtpExpiresAt = &expiresAt
	if err := s.accounts.Update(ctx, acc); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrEmailSendFailure
	}
	if err := s.sender.SendLoginCode(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send login code failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

func (s *AccountService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidInput
	}

	acc, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}
	if acc.OtpCodeHash == "" || acc.OtpExpiresAt == nil {
		return domain.User{}, ErrOTPNotRequested
	}
	if s.now().After(*acc.OtpExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTP(code, acc.OtpCodeHash) {
		return domain.User{}, ErrOTPInvalid
	}
	if acc.Disabled {
		return domain.User{}, ErrAccountDisabled
	}

	// El codigo es de un solo uso.
	acc.OtpCodeHash = ""
	acc.OtpExpiresAt = nil
	if err := s.accounts.Update(ctx, acc); err != nil {
		return domain.User{}, err
	}
	return acc.User, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.User, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	if acc.Disabled {
		return domain.User{}, ErrAccountDisabled
	}
	return acc.User, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (domain.User, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if name == "" {
			return domain.User{}, ErrInvalidInput
		}
		acc.Name = name
	}
	if changes.CompanyName != nil {
		acc.CompanyName = strings.TrimSpace(*changes.CompanyName)
	}
	if changes.Phone != nil {
		acc.Phone = strings.TrimSpace(*changes.Phone)
	}
	if changes.Skills != nil {
		acc.Skills = changes.Skills
	}
	acc.UpdatedAt = s.now()
	if err := s.accounts.Update(ctx, acc); err != nil {
		return domain.User{}, err
	}
	return acc.User, nil
}

// SetDisabled bloquea o habilita una cuenta; solo se usa para preparar escenarios locales.
func (s *AccountService) SetDisabled(ctx context.Context, id string, disabled bool) error {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	acc.Disabled = disabled
	acc.UpdatedAt = s.now()
	return s.accounts.Update(ctx, acc)
}
