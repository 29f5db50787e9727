package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered player and their coin balance.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Money        int64     `json:"money"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository persists users and balances.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a UserRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, money, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Money, &u.CreatedAt)
	return u, err
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new user with a bcrypt-hashed password and a zero balance.
//
// Precondition: email and password must be non-empty.
// Postcondition: Returns the created User, or ErrUserExists if the email is taken.
func (r *UserRepository) Create(ctx context.Context, email, password string) (User, error) {
	hash, err := HashPassword(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return User{}, err
	}
	if err != nil {
		return User{}, storeErr("hash password", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		uuid.New(), NormalizeEmail(email), hash,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return User{}, ErrUserExists
		}
		return User{}, storeErr("insert user", err)
	}
	return u, nil
}

// Authenticate verifies credentials and returns the matching user.
//
// Postcondition: Returns the User, ErrUserNotFound for an unknown email, or
// ErrInvalidCredentials for a wrong password.
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !CheckPassword(password, u.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
//
// Postcondition: Returns the User or ErrUserNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		NormalizeEmail(email),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, storeErr("query user", err)
	}
	return u, nil
}

// Get retrieves a user by id.
//
// Postcondition: Returns the User or ErrUserNotFound.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, storeErr("query user", err)
	}
	return u, nil
}

// AdjustMoney adds delta to the user's balance in one statement, so
// concurrent rewards and debits never lose an update.
//
// Postcondition: Returns the new balance, ErrUserNotFound, or
// ErrInsufficientFunds when the result would be negative (balance unchanged).
func (r *UserRepository) AdjustMoney(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`UPDATE users SET money = money + $2
		 WHERE id = $1 AND money + $2 >= 0
		 RETURNING money`,
		id, delta,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, storeErr("adjust money", err)
	}
	if _, err := r.Get(ctx, id); err != nil {
		return 0, err
	}
	return 0, ErrInsufficientFunds
}

// SetMoney overwrites the user's balance.
//
// Precondition: amount >= 0.
// Postcondition: Returns ErrInsufficientFunds for a negative amount, or ErrUserNotFound.
func (r *UserRepository) SetMoney(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount < 0 {
		return ErrInsufficientFunds
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET money = $2 WHERE id = $1`, id, amount)
	if err != nil {
		return storeErr("set money", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string, or ErrPasswordTooLong past MaxPasswordBytes.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
