package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

type postgresUserRepository struct {
	db database.Queryer
}

func NewPostgresUserRepository(db database.Queryer) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Save(ctx context.Context, user *model.User) (int64, error) {
	query := `
		INSERT INTO users (email, username, bio, image, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		user.Email, user.Username, user.Bio, user.Image, user.Role, user.PasswordHash,
	).Scan(&id)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			return 0, apperror.Conflict(user.Username, nil, "username or email already taken")
		}
		return 0, apperror.FromStorage(fmt.Errorf("failed to save user: %w", err))
	}

	return id, nil
}

func (r *postgresUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *postgresUserRepository) findOne(ctx context.Context, column, key string) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, username, bio, image, role, password_hash, created_at, updated_at
		FROM users
		WHERE %s = $1
	`, column)

	user := &model.User{}
	err := r.db.QueryRow(ctx, query, key).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Bio,
		&user.Image,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound(key, "user [%s] not found", key)
		}
		return nil, apperror.FromStorage(fmt.Errorf("failed to find user: %w", err))
	}

	return user, nil
}

func (r *postgresUserRepository) FindIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NotFound(username, "user [%s] not found", username)
		}
		return 0, apperror.FromStorage(fmt.Errorf("failed to find user id: %w", err))
	}
	return id, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2, bio = $3, image = $4, password_hash = $5, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, user.ID, user.Email, user.Bio, user.Image, user.PasswordHash)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			return apperror.Conflict(user.Username, nil, "email already taken")
		}
		return apperror.FromStorage(fmt.Errorf("failed to update user: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(user.Username, "user [%s] not found", user.Username)
	}
	return nil
}

func (r *postgresUserRepository) FindFollowedAuthors(ctx context.Context, follower string, authors []string) ([]string, error) {
	query := `
		SELECT u.username
		FROM followers f
		INNER JOIN users u ON f.user_id = u.id
		INNER JOIN users uf ON f.follower_id = uf.id
		WHERE uf.username = $1 AND u.username = ANY($2)
	`

	rows, err := r.db.Query(ctx, query, follower, authors)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find followed authors: %w", err))
	}
	defer rows.Close()

	var followed []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan followed author: %w", err)
		}
		followed = append(followed, username)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read followed authors: %w", err))
	}

	return followed, nil
}

func (r *postgresUserRepository) Follow(ctx context.Context, followerID, followedID int64) error {
	query := `
		INSERT INTO followers (user_id, follower_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, followedID, followerID); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to follow user: %w", err))
	}
	return nil
}

func (r *postgresUserRepository) Unfollow(ctx context.Context, followerID, followedID int64) error {
	query := `DELETE FROM followers WHERE user_id = $1 AND follower_id = $2`

	if _, err := r.db.Exec(ctx, query, followedID, followerID); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to unfollow user: %w", err))
	}
	return nil
}

func (r *postgresUserRepository) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM followers WHERE user_id = $1 AND follower_id = $2)`

	var following bool
	if err := r.db.QueryRow(ctx, query, followedID, followerID).Scan(&following); err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to check follow edge: %w", err))
	}
	return following, nil
}
