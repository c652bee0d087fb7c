// main.go
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "time/tzdata"

	_ "github.com/localnerve/conexo-admin/docs/api" // Swagger docs
	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/handlers"
	"github.com/localnerve/conexo-admin/internal/i18n"
	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/logging"
	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/internal/storage"
)

// @title Conexo Admin API
// @version 1.0.0
// @description Accounts, listings, media and moderation for the Conexo community directory
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/conexo-admin
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

// uploads are capped at 5MB; leave room for the multipart envelope
const bodyLimit = 6 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}
	if n, err := database.SeedCategories(db); err != nil {
		zlog.Fatal("Failed to seed categories", zap.Error(err))
	} else if n > 0 {
		zlog.Info("Seeded categories", zap.Int64("count", n))
	}

	ctx := context.Background()

	var idp identity.Provider = identity.Unconfigured{}
	if cfg.AuthzURL != "" {
		provider, err := identity.NewAuthorizerProvider(cfg, zlog)
		if err != nil {
			zlog.Fatal("Failed to create identity provider", zap.Error(err))
		}
		idp = provider
	} else {
		zlog.Warn("AUTHZ_URL is not set, every request is anonymous")
	}

	var store storage.ObjectStore = storage.Unconfigured{}
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg)
		if err != nil {
			zlog.Fatal("Failed to create object store", zap.Error(err))
		}
		defer gcs.Close()
		store = gcs
	} else {
		zlog.Warn("STORAGE_BUCKET is not set, media uploads are disabled")
	}

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqp, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.EmailFrom)
		if err != nil {
			zlog.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer amqp.Close()
		pub = amqp
	}

	svc := services.New(db, cfg, idp, store, pub, zlog, services.NewMetrics(prometheus.DefaultRegisterer))
	msgs := i18n.Default()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg, msgs, zlog),
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(compress.New())

	prom := fiberprometheus.New("conexo")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api", middleware.Locale(msgs), middleware.Authenticate(idp, zlog))
	h := &handlers.Handler{Svc: svc, Cfg: cfg, Msgs: msgs, Log: zlog}
	h.Routes(api)

	app.Use(handlers.NotFound)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("Gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}

	zlog.Info("Server stopped")
}
