// e2e_test.go
//
// Conexo admin API: accounts, listings and moderation for the community directory
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of conexo-admin.
// conexo-admin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// conexo-admin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with conexo-admin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package e2e_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	_ "github.com/localnerve/conexo-admin/docs/api"
	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/handlers"
	"github.com/localnerve/conexo-admin/internal/i18n"
	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

type stack struct {
	app *fiber.App
	cfg *config.Config
	tc  *helpers.TestContainers
}

// newStack starts the containers and wires the API in process against them
func newStack(t *testing.T) *stack {
	t.Helper()
	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	t.Cleanup(func() { tc.Terminate(t) })

	for k, v := range tc.Env {
		t.Setenv(k, v)
	}
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("SWEEP_TOKEN_SECRET", "e2e-sweep-secret")
	cfg, err := config.Load()
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	db, err := database.Connect(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	_, err = database.SeedCategories(db)
	require.NoError(t, err)

	idp, err := identity.NewAuthorizerProvider(cfg, log)
	require.NoError(t, err)
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.EmailFrom)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	msgs := i18n.Default()
	svc := services.New(db, cfg, idp, nil, pub, log, services.NewMetrics(prometheus.NewRegistry()))

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(cfg, msgs, log)})
	prom := fiberprometheus.NewWithRegistry(prometheus.NewRegistry(), "conexo", "", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
	app.Get("/swagger/*", swagger.HandlerDefault)
	api := app.Group("/api", middleware.Locale(msgs), middleware.Authenticate(idp, log))
	(&handlers.Handler{Svc: svc, Cfg: cfg, Msgs: msgs, Log: log}).Routes(api)
	app.Use(handlers.NotFound)

	return &stack{app: app, cfg: cfg, tc: tc}
}

func (s *stack) request(t *testing.T, method, path, cookie, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", middleware.SessionCookie+"="+cookie)
	}
	resp, err := s.app.Test(req, 30000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

// TestE2EWithFullStack runs an account through its whole lifecycle
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	s := newStack(t)
	deliveries := bindQueue(t, s.cfg)

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := s.app.Test(httptest.NewRequest("GET", "/api/health", nil), 30000)
		require.NoError(t, err)
		helpers.AssertStatus(t, resp, http.StatusOK)
		var result services.HealthCheckResult
		helpers.ParseJSON(t, resp, &result)
		assert.Equal(t, "ok", result.Authorizer)
		assert.Equal(t, "ok", result.Messaging)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, _ := s.request(t, "GET", "/metrics", "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		resp, _ := s.request(t, "GET", "/swagger/index.html", "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	email := "e2e-" + uuid.NewString()[:8] + "@example.com"
	cookie, principal := helpers.AcquireSession(t, s.cfg.AuthzURL, s.cfg.AuthzClientID, email, helpers.GeneratePassword())
	require.NotEmpty(t, principal)

	t.Run("Lifecycle", func(t *testing.T) {
		resp, raw := s.request(t, "GET", "/api/me", cookie, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		assert.Contains(t, string(raw), email)

		resp, raw = s.request(t, "POST", "/api/account/business", cookie, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		resp, raw = s.request(t, "POST", "/api/businesses", cookie, `{"name":"Padaria E2E","category":"outros","publish":true}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		resp, raw = s.request(t, "POST", "/api/account/delete", cookie, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		resp, raw = s.request(t, "GET", "/api/businesses", cookie, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

		resp, raw = s.request(t, "POST", "/api/account/reset", cookie, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	})

	t.Run("EventsPublished", func(t *testing.T) {
		want := map[string]bool{events.AccountDeletionRequested: false, events.AccountPurged: false}
		deadline := time.After(10 * time.Second)
		for !want[events.AccountDeletionRequested] || !want[events.AccountPurged] {
			select {
			case d := <-deliveries:
				if _, ok := want[d.RoutingKey]; ok {
					want[d.RoutingKey] = true
				}
			case <-deadline:
				t.Fatalf("Missing events: %v", want)
			}
		}
	})
}

// bindQueue declares an exclusive queue receiving every account event
func bindQueue(t *testing.T, cfg *config.Config) <-chan amqp.Delivery {
	t.Helper()
	conn, err := amqp.Dial(cfg.AMQPURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	require.NoError(t, ch.ExchangeDeclare(cfg.AMQPExchange, "topic", true, false, false, false, nil))
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "account.#", cfg.AMQPExchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}
