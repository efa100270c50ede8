package store

import (
	"context"
)

const (
	reviewColumns        = `id, user_id, entity_kind, entity_id, rating, comment, created_at, updated_at`
	reviewColumnsAliased = `r.id, r.user_id, r.entity_kind, r.entity_id, r.rating, r.comment, r.created_at, r.updated_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.UserID, &r.EntityKind, &r.EntityID,
		&r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Postgres) Create(ctx context.Context, r Review) (Review, error) {
	const q = `INSERT INTO reviews (user_id, entity_kind, entity_id, rating, comment)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING ` + reviewColumns
	out, err := scanReview(s.pool.QueryRow(ctx, q, r.UserID, r.EntityKind, r.EntityID, r.Rating, r.Comment))
	if err != nil {
		if isUniqueViolation(err) {
			return Review{}, ErrDuplicateReview
		}
		return Review{}, err
	}
	return out, nil
}

func (s *Postgres) Get(ctx context.Context, id string) (Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	out, err := scanReview(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if noRows(err) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, err
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, id, userID string, patch ReviewPatch) (Review, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return Review{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if noRows(err) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, err
	}
	if owner != userID {
		return Review{}, ErrNotAuthor
	}

	const q = `UPDATE reviews
	           SET rating = COALESCE($1, rating),
	               comment = COALESCE($2, comment),
	               updated_at = now()
	           WHERE id = $3
	           RETURNING ` + reviewColumns
	out, err := scanReview(tx.QueryRow(ctx, q, patch.Rating, patch.Comment, id))
	if err != nil {
		return Review{}, err
	}
	return out, tx.Commit(ctx)
}

// Delete removes the review, its replies and its helpful votes in one
// transaction. Either everything goes or nothing does.
func (s *Postgres) Delete(ctx context.Context, id, userID string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if noRows(err) {
			return ErrReviewNotFound
		}
		return err
	}
	if owner != userID {
		return ErrNotAuthor
	}

	if _, err := tx.Exec(ctx, `DELETE FROM review_helpful WHERE review_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM review_replies WHERE review_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) ListByEntity(ctx context.Context, ref EntityRef, sort string, page, pageSize int) ([]Review, int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE entity_kind = $1 AND entity_id = $2`,
		ref.Kind, ref.ID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	var q string
	switch sort {
	case SortHelpful:
		q = `SELECT ` + reviewColumnsAliased + `
		     FROM reviews r
		     LEFT JOIN review_helpful h ON h.review_id = r.id
		     WHERE r.entity_kind = $1 AND r.entity_id = $2
		     GROUP BY r.id
		     ORDER BY COUNT(h.user_id) DESC, r.created_at DESC, r.id DESC
		     OFFSET $3 LIMIT $4`
	case SortRatingHigh:
		q = `SELECT ` + reviewColumns + ` FROM reviews
		     WHERE entity_kind = $1 AND entity_id = $2
		     ORDER BY rating DESC, created_at DESC, id DESC
		     OFFSET $3 LIMIT $4`
	case SortRatingLow:
		q = `SELECT ` + reviewColumns + ` FROM reviews
		     WHERE entity_kind = $1 AND entity_id = $2
		     ORDER BY rating ASC, created_at DESC, id DESC
		     OFFSET $3 LIMIT $4`
	default: // SortRecent
		q = `SELECT ` + reviewColumns + ` FROM reviews
		     WHERE entity_kind = $1 AND entity_id = $2
		     ORDER BY created_at DESC, id DESC
		     OFFSET $3 LIMIT $4`
	}

	offset := (page - 1) * pageSize
	rows, err := s.pool.Query(ctx, q, ref.Kind, ref.ID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// RatingStats computes the aggregate from source rows; nothing derived is
// ever persisted.
func (s *Postgres) RatingStats(ctx context.Context, ref EntityRef) (RatingStats, error) {
	stats := RatingStats{Distribution: emptyDistribution()}

	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE entity_kind = $1 AND entity_id = $2`,
		ref.Kind, ref.ID).Scan(&stats.Average)
	if err != nil {
		return stats, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT rating, COUNT(*) FROM reviews
		 WHERE entity_kind = $1 AND entity_id = $2
		 GROUP BY rating`,
		ref.Kind, ref.ID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return stats, err
		}
		stats.Distribution[rating] = count
	}
	return stats, rows.Err()
}

func emptyDistribution() map[int]int {
	d := make(map[int]int, 5)
	for star := 1; star <= 5; star++ {
		d[star] = 0
	}
	return d
}
