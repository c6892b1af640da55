package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

var _ repository.ReviewRepository = (*DB)(nil)

// CreateReview stores a review. The foreign keys reject unknown users or themes.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	review.ID = xid.New().String()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, theme_id, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.UserID,
		review.ThemeID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating review: %w", err)
	}

	return nil
}

// ListReviewsByTheme returns a theme's reviews, newest first, each with the
// reviewer's name and avatar.
func (db *DB) ListReviewsByTheme(ctx context.Context, themeID string) ([]model.ReviewWithAuthor, error) {
	rows, err := db.q(ctx).QueryContext(ctx,
		`SELECT r.id, r.user_id, r.theme_id, r.rating, r.comment, r.created_at,
		        u.name, u.image
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.theme_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`,
		themeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews for theme %s: %w", themeID, err)
	}
	defer rows.Close()

	reviews := make([]model.ReviewWithAuthor, 0)
	for rows.Next() {
		var r model.ReviewWithAuthor
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.ThemeID, &r.Rating, &r.Comment, &r.CreatedAt,
			&r.User.Name, &r.User.Image,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}

	return reviews, nil
}
