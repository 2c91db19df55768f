package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// AccountRow mirrors the accounts table. Passwords are stored as bcrypt
// hashes; the plaintext only ever exists transiently after RC5 decryption.
type AccountRow struct {
	ID           uint32
	Username     string
	PasswordHash string
	Name         string
	Email        string
	IP           string
	CreatedAt    time.Time
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// FindByUsername loads an account, or nil when none exists.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(name,''), COALESCE(email,''),
		        COALESCE(ip,''), created_at
		 FROM accounts WHERE username = $1`, username,
	).Scan(
		&row.ID, &row.Username, &row.PasswordHash, &row.Name, &row.Email,
		&row.IP, &row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Create inserts a new account with a freshly hashed password.
func (r *AccountRepo) Create(ctx context.Context, username, rawPassword, ip string) (*AccountRow, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	row := &AccountRow{
		Username:     username,
		PasswordHash: string(hash),
		IP:           ip,
		CreatedAt:    time.Now(),
	}
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash, ip) VALUES ($1, $2, $3)
		 RETURNING id`,
		row.Username, row.PasswordHash, row.IP,
	).Scan(&row.ID)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ValidatePassword compares a plaintext password against the stored hash.
func (r *AccountRepo) ValidatePassword(hash, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}

// UpdateLastIP records the client address used for the latest login.
func (r *AccountRepo) UpdateLastIP(ctx context.Context, id uint32, ip string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET ip = $2 WHERE id = $1`, id, ip)
	return err
}
