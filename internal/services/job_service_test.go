package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/types"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestCreateJob(t *testing.T) {
	env, contractor := newListingEnv(t)
	ctx := context.Background()

	res, err := env.svc.CreateJob(ctx, "owner", JobInput{
		Title:        "Padeiro(a)",
		ContractorID: types.FlexUint64(contractor.ID),
		Publish:      true,
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	var j models.Job
	require.NoError(t, env.db.First(&j, res.ID).Error)
	assert.Equal(t, "Padaria", j.CompanyName)
	assert.Equal(t, "padeiro-a", j.Slug)
	assert.Equal(t, models.StatusPending, j.Status)
	assert.Nil(t, j.StartsAt)
	assert.Nil(t, j.EndsAt)
}

func TestCreateJobExplicitCompanyAndDates(t *testing.T) {
	env, contractor := newListingEnv(t)
	ctx := context.Background()

	res, err := env.svc.CreateJob(ctx, "owner", JobInput{
		Title:          "Caixa",
		CompanyName:    "Padaria Central Ltda",
		ContractorID:   types.FlexUint64(contractor.ID),
		DateRangeInput: DateRangeInput{StartDate: "2024-12-01", StartTime: "09:00", EndDate: "2025-01-31"},
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	view, err := env.svc.GetJob(ctx, "owner", res.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Padaria Central Ltda", view.CompanyName)
	assert.Equal(t, "2024-12-01", view.StartDate)
	assert.Equal(t, "2025-01-31", view.EndDate)
	assert.Equal(t, "09:00", view.EndTime)
}

func TestCreateJobContractorMustBeOwned(t *testing.T) {
	env, _ := newListingEnv(t)
	theirs := helpers.CreateBusiness(t, env.db, "someone", "Deles", "deles")

	res, err := env.svc.CreateJob(context.Background(), "owner", JobInput{
		Title:        "Caixa",
		ContractorID: types.FlexUint64(theirs.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, MsgContractorMissing, res.Error)
}

func TestCreateJobFallbackSlug(t *testing.T) {
	env, contractor := newListingEnv(t)

	res, err := env.svc.CreateJob(context.Background(), "owner", JobInput{
		Title:        "***",
		ContractorID: types.FlexUint64(contractor.ID),
	})
	require.NoError(t, err)
	var j models.Job
	require.NoError(t, env.db.First(&j, res.ID).Error)
	assert.Regexp(t, regexp.MustCompile(`^vaga-\d+$`), j.Slug)
}

func TestUpdateJobProbesSlug(t *testing.T) {
	env, contractor := newListingEnv(t)
	ctx := context.Background()
	helpers.CreateJob(t, env.db, "someone", 999, "Caixa", "caixa")
	mine := helpers.CreateJob(t, env.db, "owner", contractor.ID, "Atendente", "atendente")

	res, err := env.svc.UpdateJob(ctx, "owner", mine.ID, JobInput{
		Title:        "Caixa",
		ContractorID: types.FlexUint64(contractor.ID),
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	var j models.Job
	require.NoError(t, env.db.First(&j, mine.ID).Error)
	assert.Equal(t, "caixa-1", j.Slug)

	res, err = env.svc.UpdateJob(ctx, "someone", mine.ID, JobInput{Title: "X", ContractorID: 1})
	require.NoError(t, err)
	assert.Equal(t, MsgListingNotFound, res.Error)
}
