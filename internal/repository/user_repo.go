package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"job-portal/internal/domain"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, acc domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Update(ctx context.Context, acc domain.Account) error
}

// MemoryAccountRepository guarda cuentas en memoria; usado en tests y en desarrollo.
type MemoryAccountRepository struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byEmail map[string]string
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryAccountRepository) Create(_ context.Context, acc domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(acc.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrEmailTaken
	}
	r.byID[acc.ID] = acc
	r.byEmail[key] = acc.ID
	return nil
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.Lock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.Unlock()
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryAccountRepository) Update(_ context.Context, acc domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[acc.ID]; !ok {
		return ErrNotFound
	}
	r.byID[acc.ID] = acc
	return nil
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, email, name, role, company_name, phone, skills, password_hash,
	disabled, otp_code_hash, otp_expires_at, created_at, updated_at`

func (r *PgAccountRepository) Create(ctx context.Context, acc domain.Account) error {
	const query = `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		acc.ID,
		strings.ToLower(acc.Email),
		acc.Name,
		string(acc.Role),
		acc.CompanyName,
		acc.Phone,
		nonNilSkills(acc.Skills),
		acc.PasswordHash,
		acc.Disabled,
		acc.OtpCodeHash,
		acc.OtpExpiresAt,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(email))
}

func (r *PgAccountRepository) Update(ctx context.Context, acc domain.Account) error {
	const query = `
		UPDATE accounts
		SET name = $2, company_name = $3, phone = $4, skills = $5, password_hash = $6,
			disabled = $7, otp_code_hash = $8, otp_expires_at = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		acc.ID,
		acc.Name,
		acc.CompanyName,
		acc.Phone,
		nonNilSkills(acc.Skills),
		acc.PasswordHash,
		acc.Disabled,
		acc.OtpCodeHash,
		acc.OtpExpiresAt,
		acc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgAccountRepository) getOne(ctx context.Context, query string, arg string) (domain.Account, error) {
	var (
		acc       domain.Account
		role      string
		otpExpiry *time.Time
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&acc.ID,
		&acc.Email,
		&acc.Name,
		&role,
		&acc.CompanyName,
		&acc.Phone,
		&acc.Skills,
		&acc.PasswordHash,
		&acc.Disabled,
		&acc.OtpCodeHash,
		&otpExpiry,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	acc.Role = domain.Role(role)
	acc.OtpExpiresAt = otpExpiry
	return acc, nil
}

func nonNilSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
