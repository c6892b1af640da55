package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, password_hash, role, image, github_id, google_id, created_at, updated_at`

// CreateUser inserts a new account. A duplicate email is reported as
// apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Image,
		nullGitHubID(user.GitHubID),
		nullGoogleID(user.GoogleID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email. Emails are stored lower-cased by
// the service layer, so this is an exact match.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpdateUser writes the profile fields (name, email, password hash, image).
// Role and the provider links are changed through their own methods.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE users
		 SET name = ?, email = ?, password_hash = ?, image = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Image,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// UpsertGitHubUser signs in a GitHub identity.
//
// Lookup order: an account already linked to this GitHub ID, then an account
// with the same email (which gets linked), then a new account. On the update
// paths the name and avatar are refreshed from GitHub; role, email and
// password are left alone. user is filled in with the stored record.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	return db.upsertLinked(ctx, "github_id", user.GitHubID, user, func(existing *model.User) {
		existing.GitHubID = user.GitHubID
	})
}

// UpsertGoogleUser is UpsertGitHubUser for a Google identity, keyed on the
// OpenID subject.
func (db *DB) UpsertGoogleUser(ctx context.Context, user *model.User) error {
	return db.upsertLinked(ctx, "google_id", user.GoogleID, user, func(existing *model.User) {
		existing.GoogleID = user.GoogleID
	})
}

// upsertLinked finds the account linked through column, falls back to the
// email, and creates one when neither matches. link copies the provider key
// onto an existing account.
func (db *DB) upsertLinked(ctx context.Context, column string, key any, user *model.User, link func(*model.User)) error {
	return db.InTx(ctx, func(ctx context.Context) error {
		existing, err := scanUser(db.q(ctx).QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, key,
		))
		if err == sql.ErrNoRows && user.Email != "" {
			existing, err = scanUser(db.q(ctx).QueryRowContext(ctx,
				`SELECT `+userColumns+` FROM users WHERE email = ?`, user.Email,
			))
		}
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("sqlite: looking up user by %s %v: %w", column, key, err)
		}

		if existing == nil {
			return db.CreateUser(ctx, user)
		}

		link(existing)
		if user.Name != "" {
			existing.Name = user.Name
		}
		if user.Image != "" {
			existing.Image = user.Image
		}
		existing.UpdatedAt = time.Now().UTC()

		_, err = db.q(ctx).ExecContext(ctx,
			`UPDATE users SET github_id = ?, google_id = ?, name = ?, image = ?, updated_at = ? WHERE id = ?`,
			nullGitHubID(existing.GitHubID), nullGoogleID(existing.GoogleID),
			existing.Name, existing.Image, existing.UpdatedAt, existing.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: linking %s to user %s: %w", column, existing.ID, err)
		}

		*user = *existing
		return nil
	})
}

// SetUserRole changes the role of the account with the given email.
func (db *DB) SetUserRole(ctx context.Context, email string, role model.Role) error {
	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE email = ?`,
		role, time.Now().UTC(), email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting role for %s: %w", email, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", email)
	}

	return nil
}

// scanUser reads one users row. sql.ErrNoRows is returned unwrapped so callers
// can compare against it.
func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
		googleID sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Image,
		&githubID,
		&googleID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	u.GoogleID = googleID.String
	return &u, nil
}

// nullGitHubID stores 0 as NULL so the UNIQUE index only covers linked accounts.
func nullGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullGoogleID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
