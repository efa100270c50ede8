package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return New(mem, mem, mem, nil, nil, 0), mem
}

func storeRef(id string) store.EntityRef {
	return store.EntityRef{Kind: store.KindStore, ID: id}
}

func TestCreateReview_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		ref     store.EntityRef
		rating  int
		comment string
		field   string
	}{
		{"unknown entity kind", store.EntityRef{Kind: "restaurant", ID: "x"}, 4, "fine", "entity_type"},
		{"empty entity id", store.EntityRef{Kind: store.KindStore, ID: ""}, 4, "fine", "entity_id"},
		{"rating too low", storeRef("store-1"), 0, "fine", "rating"},
		{"rating too high", storeRef("store-1"), 6, "fine", "rating"},
		{"empty comment", storeRef("store-1"), 4, "", "comment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateReview(ctx, "user-a", tc.ref, tc.rating, tc.comment)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreateReview_CommentLengthCountsCodePoints(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 5000 multi-byte runes are exactly at the limit.
	atLimit := make([]rune, MaxReviewCommentLen)
	for i := range atLimit {
		atLimit[i] = 'ß'
	}
	_, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, string(atLimit))
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, "user-b", storeRef("store-1"), 4, string(atLimit)+"x")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "comment", verr.Field)
}

func TestCreateReview_DuplicatePerEntity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "first")
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, "user-a", storeRef("store-1"), 2, "second")
	require.ErrorIs(t, err, store.ErrDuplicateReview)
}

func TestUpdateReview_RequiresAField(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "first")
	require.NoError(t, err)

	_, err = svc.UpdateReview(ctx, created.ID, "user-a", nil, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	rating := 2
	updated, err := svc.UpdateReview(ctx, created.ID, "user-a", &rating, nil)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Rating)
	require.Equal(t, "first", updated.Comment)
	require.NotNil(t, updated.UpdatedAt)
}

func TestListReviews_StatsAndSummaries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Ratings 2, 3, 3: mean 2.666... rounds to 2.7.
	r1, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 2, "meh")
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, "user-b", storeRef("store-1"), 3, "ok")
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, "user-c", storeRef("store-1"), 3, "fine")
	require.NoError(t, err)

	require.NoError(t, svc.MarkHelpful(ctx, r1.ID, "user-b"))
	_, err = svc.CreateReply(ctx, r1.ID, "user-c", "disagree", nil)
	require.NoError(t, err)

	page, err := svc.ListReviews(ctx, storeRef("store-1"), store.SortRecent, 1, 10, "user-b")
	require.NoError(t, err)

	require.Equal(t, 3, page.Total)
	require.Len(t, page.Reviews, 3)
	require.Equal(t, 2.7, page.AverageRating)
	require.Equal(t, map[int]int{1: 0, 2: 1, 3: 2, 4: 0, 5: 0}, page.RatingDistribution)

	count := 0
	for _, n := range page.RatingDistribution {
		count += n
	}
	require.Equal(t, page.Total, count)

	// r1 is the only review with a vote and a reply; user-b voted on it.
	for _, sum := range page.Reviews {
		if sum.ID == r1.ID {
			require.Equal(t, 1, sum.HelpfulCount)
			require.True(t, sum.CallerHasVoted)
			require.Equal(t, 1, sum.ReplyCount)
		} else {
			require.Zero(t, sum.HelpfulCount)
			require.False(t, sum.CallerHasVoted)
			require.Zero(t, sum.ReplyCount)
		}
	}
}

func TestListReviews_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListReviews(ctx, storeRef("store-1"), "alphabetical", 1, 10, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "sort_by", verr.Field)

	_, err = svc.ListReviews(ctx, storeRef("store-1"), store.SortRecent, 0, 10, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "page", verr.Field)

	_, err = svc.ListReviews(ctx, storeRef("store-1"), store.SortRecent, 1, MaxPageSize+1, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "page_size", verr.Field)
}

func TestRatingStats_CacheInvalidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "first")
	require.NoError(t, err)

	stats, err := svc.RatingStats(ctx, storeRef("store-1"))
	require.NoError(t, err)
	require.Equal(t, 4.0, stats.Average)

	// A second write must not serve the stale cached aggregate.
	_, err = svc.CreateReview(ctx, "user-b", storeRef("store-1"), 5, "second")
	require.NoError(t, err)

	stats, err = svc.RatingStats(ctx, storeRef("store-1"))
	require.NoError(t, err)
	require.Equal(t, 4.5, stats.Average)

	// Manual invalidation mirrors what the events consumer does.
	svc.InvalidateStats(string(store.KindStore), "store-1")
	stats, err = svc.RatingStats(ctx, storeRef("store-1"))
	require.NoError(t, err)
	require.Equal(t, 4.5, stats.Average)
}

func TestGetReviewWithTree(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "review")
	require.NoError(t, err)

	top, err := svc.CreateReply(ctx, created.ID, "user-b", "top", nil)
	require.NoError(t, err)
	nested, err := svc.CreateReply(ctx, created.ID, "user-c", "nested", &top.ID)
	require.NoError(t, err)

	got, err := svc.GetReviewWithTree(ctx, created.ID, "user-b")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, 2, got.ReplyCount)
	require.Len(t, got.Replies, 1)
	require.Equal(t, top.ID, got.Replies[0].ID)
	require.Len(t, got.Replies[0].Children, 1)
	require.Equal(t, nested.ID, got.Replies[0].Children[0].ID)

	_, err = svc.GetReviewWithTree(ctx, "missing", "")
	require.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestCreateReply_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "review")
	require.NoError(t, err)

	long := make([]rune, MaxReplyCommentLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.CreateReply(ctx, created.ID, "user-b", string(long), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateReply(ctx, "missing", "user-b", "hello", nil)
	require.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestDeleteReview_CascadeThroughService(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "review")
	require.NoError(t, err)
	_, err = svc.CreateReply(ctx, created.ID, "user-b", "reply", nil)
	require.NoError(t, err)
	require.NoError(t, svc.MarkHelpful(ctx, created.ID, "user-b"))

	require.ErrorIs(t, svc.DeleteReview(ctx, created.ID, "user-b"), store.ErrNotAuthor)
	require.NoError(t, svc.DeleteReview(ctx, created.ID, "user-a"))

	_, err = mem.Get(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrReviewNotFound)
	n, err := mem.CountByReview(ctx, created.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	// The user can review the entity again after deleting.
	_, err = svc.CreateReview(ctx, "user-a", storeRef("store-1"), 5, "take two")
	require.NoError(t, err)
}

func TestHelpfulVotes_Toggle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, "user-a", storeRef("store-1"), 4, "review")
	require.NoError(t, err)

	require.NoError(t, svc.MarkHelpful(ctx, created.ID, "user-b"))
	require.ErrorIs(t, svc.MarkHelpful(ctx, created.ID, "user-b"), store.ErrDuplicateVote)
	require.NoError(t, svc.UnmarkHelpful(ctx, created.ID, "user-b"))
	require.ErrorIs(t, svc.UnmarkHelpful(ctx, created.ID, "user-b"), store.ErrVoteNotFound)
	require.NoError(t, svc.MarkHelpful(ctx, created.ID, "user-b"))
}
