package services

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/tests/helpers"
)

type testEnv struct {
	svc   *Service
	db    *gorm.DB
	idp   *helpers.FakeIdentity
	store *helpers.FakeStore
	pub   *helpers.FakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := helpers.NewTestDB(t)
	idp := helpers.NewFakeIdentity()
	store := helpers.NewFakeStore()
	pub := &helpers.FakePublisher{}
	svc := New(db, helpers.TestConfig(), idp, store, pub, zaptest.NewLogger(t), nil)
	return &testEnv{svc: svc, db: db, idp: idp, store: store, pub: pub}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
