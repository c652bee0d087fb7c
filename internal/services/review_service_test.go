package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestRespondToReview(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	review := helpers.CreateReview(t, env.db, models.ReviewItemBusiness, b.ID, "alice")

	res, err := env.svc.RespondToReview(ctx, "owner", review.ID, "<b>Obrigado</b> pela visita")
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	res, err = env.svc.RespondToReview(ctx, "owner", review.ID, "Volte sempre")
	require.NoError(t, err)
	require.True(t, res.Success)

	var responses []models.ReviewResponse
	require.NoError(t, env.db.Where("review_id = ?", review.ID).Find(&responses).Error)
	require.Len(t, responses, 1)
	assert.Equal(t, "Volte sempre", responses[0].Body)
	assert.Equal(t, "owner", responses[0].ResponderID)

	reviews, err := env.svc.ListForOwner(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].Response)
	assert.Equal(t, "Volte sempre", reviews[0].Response.Body)
}

func TestRespondToEventReview(t *testing.T) {
	env, b := newListingEnv(t)
	e := helpers.CreateEvent(t, env.db, "owner", b.ID, "Feira", "feira")
	review := helpers.CreateReview(t, env.db, models.ReviewItemEvent, e.ID, "alice")

	res, err := env.svc.RespondToReview(context.Background(), "owner", review.ID, "Até a próxima")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRespondToReviewNotOwner(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	review := helpers.CreateReview(t, env.db, models.ReviewItemBusiness, b.ID, "alice")

	res, err := env.svc.RespondToReview(ctx, "alice", review.ID, "Eu mesma")
	require.NoError(t, err)
	assert.Equal(t, MsgReviewNotFound, res.Error)

	res, err = env.svc.RespondToReview(ctx, "owner", review.ID+100, "Oi")
	require.NoError(t, err)
	assert.Equal(t, MsgReviewNotFound, res.Error)

	assert.Zero(t, helpers.CountRows(t, env.db, &models.ReviewResponse{}, "review_id = ?", review.ID))

	reviews, err := env.svc.ListForOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestRespondToReviewBody(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	review := helpers.CreateReview(t, env.db, models.ReviewItemBusiness, b.ID, "alice")

	for _, body := range []string{"", "   ", "<i></i>", strings.Repeat("é", MaxResponseRunes+1)} {
		res, err := env.svc.RespondToReview(ctx, "owner", review.ID, body)
		require.NoError(t, err)
		assert.Equal(t, MsgReviewInvalidBody, res.Error)
		assert.Equal(t, []any{MaxResponseRunes}, res.Args)
	}

	res, err := env.svc.RespondToReview(ctx, "owner", review.ID, strings.Repeat("é", MaxResponseRunes))
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = env.svc.RespondToReview(ctx, "", review.ID, "Oi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTargetFromRow(t *testing.T) {
	t.Parallel()
	target, err := TargetFromRow(models.ReviewItemJob, 9)
	require.NoError(t, err)
	assert.Equal(t, JobTarget{ID: 9}, target)

	_, err = TargetFromRow("PRODUCT", 1)
	assert.Error(t, err)
}
