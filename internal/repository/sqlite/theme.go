package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

var _ repository.ThemeRepository = (*DB)(nil)

// themeOrderBy maps a sort key to its ORDER BY clause. Every clause ends with
// the id so rows with equal sort values always come back in the same order.
//
// The clause is picked from this fixed map, never built from user input, so it
// is safe to concatenate into the query.
var themeOrderBy = map[string]string{
	model.SortNewest:    "created_at DESC, id DESC",
	model.SortPriceAsc:  "price_cents ASC, id ASC",
	model.SortPriceDesc: "price_cents DESC, id ASC",
	model.SortPopular:   "sales DESC, id ASC",
}

// CreateTheme inserts a catalog entry. CreatedAt is kept when the caller sets
// it (the seeder staggers timestamps), otherwise it is now.
func (db *DB) CreateTheme(ctx context.Context, theme *model.Theme) error {
	theme.ID = xid.New().String()

	now := time.Now().UTC()
	if theme.CreatedAt.IsZero() {
		theme.CreatedAt = now
	}
	theme.UpdatedAt = now

	features, err := encodeList(theme.Features)
	if err != nil {
		return fmt.Errorf("sqlite: creating theme: features: %w", err)
	}
	screenshots, err := encodeList(theme.Screenshots)
	if err != nil {
		return fmt.Errorf("sqlite: creating theme: screenshots: %w", err)
	}

	_, err = db.q(ctx).ExecContext(ctx,
		`INSERT INTO themes (id, name, description, long_description, price_cents, category,
		                     features, screenshots, image, demo_url, rating, sales,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		theme.ID,
		theme.Name,
		theme.Description,
		theme.LongDescription,
		toCents(theme.Price),
		theme.Category,
		features,
		screenshots,
		theme.Image,
		theme.DemoURL,
		theme.Rating,
		theme.Sales,
		theme.CreatedAt,
		theme.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating theme: %w", err)
	}

	return nil
}

// GetThemeByID returns the full theme record, features and screenshots included.
func (db *DB) GetThemeByID(ctx context.Context, id string) (*model.Theme, error) {
	var (
		t           model.Theme
		priceCents  int64
		features    string
		screenshots string
	)

	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, description, long_description, price_cents, category,
		        features, screenshots, image, demo_url, rating, sales, created_at, updated_at
		 FROM themes
		 WHERE id = ?`,
		id,
	).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.LongDescription,
		&priceCents,
		&t.Category,
		&features,
		&screenshots,
		&t.Image,
		&t.DemoURL,
		&t.Rating,
		&t.Sales,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("theme", id)
		}
		return nil, fmt.Errorf("sqlite: getting theme %s: %w", id, err)
	}

	t.Price = fromCents(priceCents)
	if t.Features, err = decodeList(features); err != nil {
		return nil, fmt.Errorf("sqlite: theme %s features: %w", id, err)
	}
	if t.Screenshots, err = decodeList(screenshots); err != nil {
		return nil, fmt.Errorf("sqlite: theme %s screenshots: %w", id, err)
	}

	return &t, nil
}

// ListThemes runs the catalog query and returns the list projection.
//
// The WHERE clause is assembled from fixed fragments; every user-supplied value
// goes through a ? placeholder. Search uses instr() rather than LIKE so that
// '%' and '_' in the search term are matched literally. Case-insensitive
// search folds both sides with store_fold, which handles non-ASCII letters.
func (db *DB) ListThemes(ctx context.Context, q repository.ThemeQuery) ([]model.ThemeSummary, error) {
	var (
		where []string
		args  []any
	)

	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}

	if q.Search != "" {
		if q.CaseSensitive {
			where = append(where, "(instr(name, ?) > 0 OR instr(description, ?) > 0)")
		} else {
			where = append(where, "(instr("+foldFunc+"(name), ?) > 0 OR instr("+foldFunc+"(description), ?) > 0)")
		}
		term := q.Search
		if !q.CaseSensitive {
			term = fold(term)
		}
		args = append(args, term, term)
	}

	query := `SELECT id, name, description, price_cents, category, image, rating, sales FROM themes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	orderBy, ok := themeOrderBy[q.Sort]
	if !ok {
		orderBy = themeOrderBy[model.SortNewest]
	}
	query += " ORDER BY " + orderBy

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing themes: %w", err)
	}
	defer rows.Close()

	themes := make([]model.ThemeSummary, 0)
	for rows.Next() {
		var (
			t          model.ThemeSummary
			priceCents int64
		)
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Description, &priceCents,
			&t.Category, &t.Image, &t.Rating, &t.Sales,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning theme row: %w", err)
		}
		t.Price = fromCents(priceCents)
		themes = append(themes, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating themes: %w", err)
	}

	return themes, nil
}

// IncrementSales bumps a theme's sales counter by one.
func (db *DB) IncrementSales(ctx context.Context, id string) error {
	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE themes SET sales = sales + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing sales for theme %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("theme", id)
	}

	return nil
}
