package store

import (
	"context"
)

// Add relies on the (user_id, review_id) unique constraint as the source of
// truth for duplicate detection; the violation at insert time is authoritative.
func (s *Postgres) Add(ctx context.Context, reviewID, userID string) error {
	const q = `INSERT INTO review_helpful (review_id, user_id) VALUES ($1, $2)`
	_, err := s.pool.Exec(ctx, q, reviewID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		if isForeignKeyViolation(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, reviewID, userID string) error {
	const q = `DELETE FROM review_helpful WHERE review_id = $1 AND user_id = $2`
	tag, err := s.pool.Exec(ctx, q, reviewID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVoteNotFound
	}
	return nil
}

func (s *Postgres) Count(ctx context.Context, reviewID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM review_helpful WHERE review_id = $1`, reviewID).Scan(&n)
	return n, err
}

func (s *Postgres) HasVoted(ctx context.Context, reviewID, userID string) (bool, error) {
	var voted bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM review_helpful WHERE review_id = $1 AND user_id = $2)`,
		reviewID, userID).Scan(&voted)
	return voted, err
}
