package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestListPending(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	e := helpers.CreateEvent(t, env.db, "owner", b.ID, "Feira", "feira")
	require.NoError(t, env.db.Model(e).Update("status", models.StatusPending).Error)
	helpers.CreateJob(t, env.db, "owner", b.ID, "Caixa", "caixa")

	items, err := env.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, KindBusiness, items[0].Kind)
	assert.Equal(t, "Padaria", items[0].Title)
	assert.Equal(t, KindEvent, items[1].Kind)
	assert.Equal(t, e.ID, items[1].ID)
}

func TestApproveEventKeepsFirstPublication(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	e := helpers.CreateEvent(t, env.db, "owner", b.ID, "Feira", "feira")
	require.NoError(t, env.db.Model(e).Updates(map[string]interface{}{"status": models.StatusPending, "active": false}).Error)

	first := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	env.svc.Now = fixedClock(first)
	require.NoError(t, env.svc.Approve(ctx, KindEvent, e.ID))

	var got models.Event
	require.NoError(t, env.db.First(&got, e.ID).Error)
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.True(t, got.Active)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, first.Equal(*got.PublishedAt))

	// resubmitted after an edit
	require.NoError(t, env.db.Model(e).Update("status", models.StatusPending).Error)
	env.svc.Now = fixedClock(first.Add(24 * time.Hour))
	require.NoError(t, env.svc.Approve(ctx, KindEvent, e.ID))
	require.NoError(t, env.db.First(&got, e.ID).Error)
	assert.True(t, first.Equal(*got.PublishedAt))

	require.NotEmpty(t, env.pub.Messages)
	msg := env.pub.Messages[0]
	assert.Equal(t, events.ListingModerated, msg.Key)
	assert.Equal(t, ModerationEvent{Kind: KindEvent, ID: e.ID, OwnerID: "owner", Title: "Feira", Decision: DecisionApproved}, msg.Data)
}

func TestRejectAndVerify(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	j := helpers.CreateJob(t, env.db, "owner", b.ID, "Caixa", "caixa")
	require.NoError(t, env.db.Model(j).Update("status", models.StatusPending).Error)

	require.NoError(t, env.svc.Reject(ctx, KindJob, j.ID, "<b>Incompleto</b>"))
	var job models.Job
	require.NoError(t, env.db.First(&job, j.ID).Error)
	assert.Equal(t, models.StatusRejected, job.Status)
	assert.False(t, job.Active)
	assert.Equal(t, "Incompleto", env.pub.Messages[0].Data.(ModerationEvent).Reason)

	require.NoError(t, env.svc.Approve(ctx, KindBusiness, b.ID))
	var business models.Business
	require.NoError(t, env.db.First(&business, b.ID).Error)
	assert.True(t, business.Verified)
	assert.True(t, business.Published)

	other := helpers.CreateBusiness(t, env.db, "owner", "Outra", "outra")
	require.NoError(t, env.svc.Reject(ctx, KindBusiness, other.ID, ""))
	require.NoError(t, env.db.First(&business, other.ID).Error)
	assert.False(t, business.Published)
}

func TestModerateMissingTarget(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.svc.Approve(context.Background(), KindEvent, 404), ErrModerationTarget)
	assert.ErrorIs(t, env.svc.Approve(context.Background(), ListingKind("post"), 1), ErrUnknownKind)
	assert.Empty(t, env.pub.Keys())
}

func TestModerateOnlyQueuedListings(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()

	draft := helpers.CreateEvent(t, env.db, "owner", b.ID, "Rascunho", "rascunho")
	require.NoError(t, env.db.Model(draft).Updates(map[string]interface{}{"status": models.StatusDraft, "active": false}).Error)
	assert.ErrorIs(t, env.svc.Approve(ctx, KindEvent, draft.ID), ErrModerationTarget)

	var got models.Event
	require.NoError(t, env.db.First(&got, draft.ID).Error)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Nil(t, got.PublishedAt)

	require.NoError(t, env.svc.Approve(ctx, KindBusiness, b.ID))
	assert.ErrorIs(t, env.svc.Approve(ctx, KindBusiness, b.ID), ErrModerationTarget)
	assert.ErrorIs(t, env.svc.Reject(ctx, KindBusiness, b.ID, ""), ErrModerationTarget)

	var business models.Business
	require.NoError(t, env.db.First(&business, b.ID).Error)
	assert.True(t, business.Published)
	assert.Len(t, env.pub.Keys(), 1)
}

func TestModerateSkipsDeletedOwner(t *testing.T) {
	env, b := newListingEnv(t)
	ctx := context.Background()
	e := helpers.CreateEvent(t, env.db, "owner", b.ID, "Feira", "feira")
	require.NoError(t, env.db.Model(e).Updates(map[string]interface{}{"status": models.StatusPending, "active": false}).Error)
	j := helpers.CreateJob(t, env.db, "owner", b.ID, "Caixa", "caixa")
	require.NoError(t, env.db.Model(j).Updates(map[string]interface{}{"status": models.StatusPending, "active": false}).Error)

	require.NoError(t, env.svc.RequestDeletion(ctx, "owner"))
	assert.ErrorIs(t, env.svc.Approve(ctx, KindEvent, e.ID), ErrModerationTarget)

	// a stale pending state still must not publish for a deleted owner
	require.NoError(t, env.db.Model(e).Update("status", models.StatusPending).Error)
	require.NoError(t, env.db.Model(j).Update("status", models.StatusPending).Error)
	require.NoError(t, env.db.Model(b).Update("published", true).Error)

	assert.ErrorIs(t, env.svc.Approve(ctx, KindEvent, e.ID), ErrModerationTarget)
	assert.ErrorIs(t, env.svc.Reject(ctx, KindJob, j.ID, ""), ErrModerationTarget)

	var user models.User
	require.NoError(t, env.db.Where("principal_id = ?", "owner").First(&user).Error)
	assert.Equal(t, models.RoleDeleted, user.Role)

	var ev models.Event
	require.NoError(t, env.db.First(&ev, e.ID).Error)
	assert.Equal(t, models.StatusPending, ev.Status)
	assert.False(t, ev.Active)
	assert.Nil(t, ev.PublishedAt)

	assert.ErrorIs(t, env.svc.Approve(ctx, KindBusiness, b.ID), ErrModerationTarget)
	var business models.Business
	require.NoError(t, env.db.First(&business, b.ID).Error)
	assert.False(t, business.Verified)
	assert.NotContains(t, env.pub.Keys(), events.ListingModerated)
}
