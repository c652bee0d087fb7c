package integration_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

type dbContainer struct {
	image   string
	port    string
	env     map[string]string
	waitLog string
	occurs  int
	cfg     config.Config
}

var mariaDB = dbContainer{
	image: "mariadb:11",
	port:  "3306",
	env: map[string]string{
		"MYSQL_ROOT_PASSWORD": "rootpass",
		"MYSQL_DATABASE":      "testdb",
		"MYSQL_USER":          "testuser",
		"MYSQL_PASSWORD":      "testpass",
	},
	waitLog: "ready for connections",
	occurs:  1,
	cfg:     config.Config{DBType: "mysql"},
}

var postgres = dbContainer{
	image: "postgres:16-alpine",
	port:  "5432",
	env: map[string]string{
		"POSTGRES_PASSWORD": "testpass",
		"POSTGRES_USER":     "testuser",
		"POSTGRES_DB":       "testdb",
	},
	waitLog: "database system is ready to accept connections",
	occurs:  2,
	cfg:     config.Config{DBType: "postgres"},
}

// startDatabase runs spec in a container and returns a migrated connection with its config
func startDatabase(t *testing.T, spec dbContainer, imageEnv string) (*gorm.DB, *config.Config) {
	t.Helper()
	ctx := context.Background()

	image := os.Getenv(imageEnv)
	if image == "" {
		image = spec.image
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{spec.port + "/tcp"},
			Env:          spec.env,
			WaitingFor: wait.ForLog(spec.waitLog).
				WithOccurrence(spec.occurs).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port(spec.port))
	require.NoError(t, err)

	cfg := helpers.TestConfig()
	cfg.DBType = spec.cfg.DBType
	cfg.DBHost = host
	cfg.DBPort = port.Port()
	cfg.DBAppDatabase = "testdb"
	cfg.DBAppUser = "testuser"
	cfg.DBAppPassword = "testpass"
	cfg.DBAppConnectionLimit = 10

	var db *gorm.DB
	for i := 0; i < 20; i++ {
		db, err = database.Connect(cfg, zaptest.NewLogger(t))
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if _, err := database.SeedCategories(db); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return db, cfg
}

// TestWithMariaDB runs the listing and account workflows against MariaDB
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, cfg := startDatabase(t, mariaDB, "DB_IMAGE")
	runWorkflows(t, db, cfg)
}

// TestWithPostgreSQL runs the listing and account workflows against PostgreSQL
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, cfg := startDatabase(t, postgres, "POSTGRES_IMAGE")
	runWorkflows(t, db, cfg)
}

func runWorkflows(t *testing.T, db *gorm.DB, cfg *config.Config) {
	t.Run("RowLocksSupported", func(t *testing.T) {
		assert.True(t, database.SupportsRowLocks(db))
	})
	t.Run("ConcurrentCreateHonoursLimit", func(t *testing.T) {
		testConcurrentCreate(t, db, cfg)
	})
	t.Run("DuplicateNameIsReported", func(t *testing.T) {
		testDuplicateName(t, db, cfg)
	})
	t.Run("HardResetPurgesEverything", func(t *testing.T) {
		testHardReset(t, db, cfg)
	})
	t.Run("HealthCheck", func(t *testing.T) {
		result := services.HealthCheck(cfg, db, zaptest.NewLogger(t))
		assert.Equal(t, "ok", result.Database)
		assert.Equal(t, "healthy", result.Status)
	})
}

func newService(t *testing.T, db *gorm.DB, cfg *config.Config) (*services.Service, *helpers.FakeIdentity, *helpers.FakeStore) {
	idp := helpers.NewFakeIdentity()
	store := helpers.NewFakeStore()
	return services.New(db, cfg, idp, store, &helpers.FakePublisher{}, zaptest.NewLogger(t), nil), idp, store
}

func testConcurrentCreate(t *testing.T, db *gorm.DB, cfg *config.Config) {
	svc, _, _ := newService(t, db, cfg)
	helpers.CreateUser(t, db, "racer", models.RoleBusiness)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]services.Result, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CreateBusiness(context.Background(), "racer", services.BusinessInput{
				Name:     fmt.Sprintf("Loja Concorrente %d", i),
				Category: "outros",
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Success {
			created++
		} else {
			assert.Equal(t, services.MsgLimitReached, results[i].Error)
		}
	}
	assert.Equal(t, cfg.ListingLimitPerType, created)
	assert.EqualValues(t, cfg.ListingLimitPerType, helpers.CountRows(t, db, &models.Business{}, "owner_id = ?", "racer"))
}

func testDuplicateName(t *testing.T, db *gorm.DB, cfg *config.Config) {
	svc, _, _ := newService(t, db, cfg)
	helpers.CreateUser(t, db, "dup-a", models.RoleBusiness)
	helpers.CreateUser(t, db, "dup-b", models.RoleBusiness)
	ctx := context.Background()

	res, err := svc.CreateBusiness(ctx, "dup-a", services.BusinessInput{Name: "Mercado Central", Category: "outros"})
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = svc.CreateBusiness(ctx, "dup-b", services.BusinessInput{Name: "Mercado Central", Category: "outros"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, services.MsgDuplicateName, res.Error)
}

func testHardReset(t *testing.T, db *gorm.DB, cfg *config.Config) {
	svc, idp, store := newService(t, db, cfg)
	ctx := context.Background()

	helpers.CreateUser(t, db, "leaving", models.RoleDeleted)
	business := helpers.CreateBusiness(t, db, "leaving", "Oficina Fechada", "oficina-fechada")
	logoKey := fmt.Sprintf("business/%d/logo", business.ID)
	store.Seed(logoKey, []byte("png"))
	require.NoError(t, db.Model(business).Update("logo_url", logoKey).Error)
	helpers.CreateEvent(t, db, "leaving", business.ID, "Feira", "feira-leaving")
	helpers.CreateReview(t, db, models.ReviewItemBusiness, business.ID, "neighbor")

	report, err := svc.HardReset(ctx, "leaving")
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedR2Objects)
	assert.False(t, store.Has(logoKey))
	assert.Equal(t, 1, idp.DeleteCalls())

	assert.Zero(t, helpers.CountRows(t, db, &models.User{}, "principal_id = ?", "leaving"))
	assert.Zero(t, helpers.CountRows(t, db, &models.Business{}, "owner_id = ?", "leaving"))
	assert.Zero(t, helpers.CountRows(t, db, &models.Event{}, "owner_id = ?", "leaving"))
	assert.Zero(t, helpers.CountRows(t, db, &models.Review{}, "item_id = ?", business.ID))

	_, err = svc.ResolveOrCreateUser(ctx, "leaving")
	assert.ErrorIs(t, err, services.ErrPrincipalPurged)
}
