package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// UserRepository is the capability set the view-model layer programs against
// for users. Fetches return (nil, nil) when the user does not exist; only
// infrastructure failures produce errors.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	Create(ctx context.Context, user models.User, passwordHash string) (*models.User, error)
	Update(ctx context.Context, user models.User) (*models.User, error)
	PasswordHashByEmail(ctx context.Context, email string) (string, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// PgUserRepository implements UserRepository over Postgres
type PgUserRepository struct {
	db *pgxpool.Pool
}

var _ UserRepository = (*PgUserRepository)(nil)

// NewUserRepository creates a new PgUserRepository
func NewUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = "id, email, phone, name, avatar_url, bio, goals, provider_id, mode, interest_ids, created_at, updated_at, last_login_at"

func scanUserRow(row pgx.Row) (dto.UserRow, error) {
	var r dto.UserRow
	err := row.Scan(
		&r.ID,
		&r.Email,
		&r.Phone,
		&r.Name,
		&r.AvatarURL,
		&r.Bio,
		&r.Goals,
		&r.ProviderID,
		&r.Mode,
		&r.InterestIDs,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.LastLoginAt,
	)
	return r, err
}

func (r *PgUserRepository) findOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column)

	row, err := scanUserRow(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	user, err := mappers.UserToDomain(row)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by id, or (nil, nil) when absent
func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail retrieves a user by email, or (nil, nil) when absent
func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByProviderID retrieves a user by external-provider subject, or (nil, nil) when absent
func (r *PgUserRepository) FindByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	return r.findOne(ctx, "provider_id", providerID)
}

// Search retrieves users whose name or email matches the query
func (r *PgUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	builder := squirrel.Select(userColumns).
		From("users").
		Where("name ILIKE ? OR email ILIKE ?", "%"+query+"%", "%"+query+"%").
		OrderBy("name ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		row, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		user, err := mappers.UserToDomain(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Create inserts a new user and returns the stored record
func (r *PgUserRepository) Create(ctx context.Context, user models.User, passwordHash string) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	row := mappers.UserToRow(user)

	query := `
		INSERT INTO users (
			id, email, phone, name, avatar_url, bio, goals, provider_id, mode, interest_ids, password_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		row.ID,
		row.Email,
		row.Phone,
		row.Name,
		row.AvatarURL,
		row.Bio,
		row.Goals,
		row.ProviderID,
		row.Mode,
		row.InterestIDs,
		passwordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &user, nil
}

// Update replaces the mutable profile fields and returns the stored record
func (r *PgUserRepository) Update(ctx context.Context, user models.User) (*models.User, error) {
	row := mappers.UserToRow(user)

	query := `
		UPDATE users
		SET phone = $2, name = $3, avatar_url = $4, bio = $5, goals = $6, mode = $7,
		    interest_ids = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		row.ID,
		row.Phone,
		row.Name,
		row.AvatarURL,
		row.Bio,
		row.Goals,
		row.Mode,
		row.InterestIDs,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no user found with ID %s", user.ID)
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return &user, nil
}

// PasswordHashByEmail returns the stored password hash for a user
func (r *PgUserRepository) PasswordHashByEmail(ctx context.Context, email string) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, "SELECT password_hash FROM users WHERE email = $1", email).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("error retrieving password hash: %w", err)
	}
	return hash, nil
}

// TouchLastLogin stamps the user's last login time
func (r *PgUserRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET last_login_at = $2 WHERE id = $1", id, time.Now())
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}
