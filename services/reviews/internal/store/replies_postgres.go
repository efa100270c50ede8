package store

import (
	"context"
)

const replyColumns = `id, review_id, user_id, parent_reply_id, comment, created_at, updated_at`

func scanReply(row rowScanner) (Reply, error) {
	var r Reply
	err := row.Scan(&r.ID, &r.ReviewID, &r.UserID, &r.ParentReplyID,
		&r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// CreateReply validates the review and the optional parent inside one
// transaction, so a concurrent review delete cannot leave an orphan behind.
func (s *Postgres) CreateReply(ctx context.Context, r Reply) (Reply, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE id = $1)`, r.ReviewID).Scan(&exists); err != nil {
		return Reply{}, err
	}
	if !exists {
		return Reply{}, ErrReviewNotFound
	}

	if r.ParentReplyID != nil {
		var parentReview string
		err := tx.QueryRow(ctx, `SELECT review_id FROM review_replies WHERE id = $1`, *r.ParentReplyID).Scan(&parentReview)
		if err != nil {
			if noRows(err) {
				return Reply{}, ErrReplyNotFound
			}
			return Reply{}, err
		}
		// Cross-review parenting is rejected.
		if parentReview != r.ReviewID {
			return Reply{}, ErrReplyNotFound
		}
	}

	const q = `INSERT INTO review_replies (review_id, user_id, parent_reply_id, comment)
	           VALUES ($1, $2, $3, $4)
	           RETURNING ` + replyColumns
	out, err := scanReply(tx.QueryRow(ctx, q, r.ReviewID, r.UserID, r.ParentReplyID, r.Comment))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Reply{}, ErrReviewNotFound
		}
		return Reply{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *Postgres) GetReply(ctx context.Context, id string) (Reply, error) {
	const q = `SELECT ` + replyColumns + ` FROM review_replies WHERE id = $1`
	out, err := scanReply(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if noRows(err) {
			return Reply{}, ErrReplyNotFound
		}
		return Reply{}, err
	}
	return out, nil
}

func (s *Postgres) UpdateReply(ctx context.Context, id, userID, comment string) (Reply, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM review_replies WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if noRows(err) {
			return Reply{}, ErrReplyNotFound
		}
		return Reply{}, err
	}
	if owner != userID {
		return Reply{}, ErrNotAuthor
	}

	const q = `UPDATE review_replies SET comment = $1, updated_at = now()
	           WHERE id = $2
	           RETURNING ` + replyColumns
	out, err := scanReply(tx.QueryRow(ctx, q, comment, id))
	if err != nil {
		return Reply{}, err
	}
	return out, tx.Commit(ctx)
}

// DeleteReply removes the reply and its whole subtree in one statement.
func (s *Postgres) DeleteReply(ctx context.Context, id, userID string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM review_replies WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if noRows(err) {
			return ErrReplyNotFound
		}
		return err
	}
	if owner != userID {
		return ErrNotAuthor
	}

	const q = `WITH RECURSIVE subtree AS (
	             SELECT id FROM review_replies WHERE id = $1
	             UNION ALL
	             SELECT c.id FROM review_replies c
	             JOIN subtree s ON c.parent_reply_id = s.id
	           )
	           DELETE FROM review_replies WHERE id IN (SELECT id FROM subtree)`
	if _, err := tx.Exec(ctx, q, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) ListByReview(ctx context.Context, reviewID string) ([]Reply, error) {
	const q = `SELECT ` + replyColumns + ` FROM review_replies
	           WHERE review_id = $1
	           ORDER BY created_at ASC, id ASC`
	return s.scanReplies(ctx, q, reviewID)
}

func (s *Postgres) ListTopLevel(ctx context.Context, reviewID string) ([]Reply, error) {
	const q = `SELECT ` + replyColumns + ` FROM review_replies
	           WHERE review_id = $1 AND parent_reply_id IS NULL
	           ORDER BY created_at ASC, id ASC`
	return s.scanReplies(ctx, q, reviewID)
}

func (s *Postgres) ListChildren(ctx context.Context, parentReplyID string) ([]Reply, error) {
	const q = `SELECT ` + replyColumns + ` FROM review_replies
	           WHERE parent_reply_id = $1
	           ORDER BY created_at ASC, id ASC`
	return s.scanReplies(ctx, q, parentReplyID)
}

func (s *Postgres) ListTree(ctx context.Context, reviewID string) ([]*ReplyNode, error) {
	replies, err := s.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return BuildTree(replies), nil
}

func (s *Postgres) CountByReview(ctx context.Context, reviewID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM review_replies WHERE review_id = $1`, reviewID).Scan(&n)
	return n, err
}

func (s *Postgres) scanReplies(ctx context.Context, q string, args ...any) ([]Reply, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reply{}
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
