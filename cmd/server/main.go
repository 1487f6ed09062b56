// main.go
//
// Collaborative relational database schema design service
// Copyright (c) 2026 SQLizer
//
// This file is part of sqlizer.
// sqlizer is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sqlizer is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sqlizer.
// If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/sqlizer/sqlizer/internal/canvas"
	"github.com/sqlizer/sqlizer/internal/config"
	"github.com/sqlizer/sqlizer/internal/database"
	"github.com/sqlizer/sqlizer/internal/handlers"
	"github.com/sqlizer/sqlizer/internal/mailer"
	"github.com/sqlizer/sqlizer/internal/middleware"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
	"github.com/sqlizer/sqlizer/internal/utils"

	_ "github.com/sqlizer/sqlizer/docs/api" // Swagger docs
)

// @title SQLizer API
// @version 1.0.0
// @description Collaborative relational database schema design service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/sqlizer/sqlizer

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("sqlizer")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg, Mailer: mailer.New(cfg)}
	workgroupHandler := &handlers.WorkgroupHandler{DB: db}
	databaseHandler := &handlers.DatabaseHandler{DB: db}
	translationHandler := &handlers.TranslationHandler{}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	// Auth routes (no session required)
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgetPassword", authHandler.ForgetPassword)
	auth.Put("/resetPassword", authHandler.ResetPassword)
	auth.Get("/verifyToken", authHandler.VerifyToken)

	// Workgroup routes
	workgroups := app.Group("/workgroups", middleware.AuthUser(db, cfg.JWTKey))
	workgroups.Get("/", workgroupHandler.GetWorkgroups)
	workgroups.Get("/datas", workgroupHandler.GetWorkgroupsDatas)
	workgroups.Post("/createWorkgroup", workgroupHandler.CreateWorkgroup)
	workgroups.Put("/addUserToWorkgroup", workgroupHandler.AddUserToWorkgroup)
	workgroups.Put("/updateUserRight", workgroupHandler.UpdateUserRight)
	workgroups.Put("/updateUserCreateRight", workgroupHandler.UpdateUserCreateRight)
	workgroups.Put("/updateUserUpdateRight", workgroupHandler.UpdateUserUpdateRight)
	workgroups.Put("/updateUserDeleteRight", workgroupHandler.UpdateUserDeleteRight)
	workgroups.Put("/leaveWorkgroup/:workgroupId", workgroupHandler.LeaveWorkgroup)
	workgroups.Delete("/removeUserOfWorkgroup", workgroupHandler.RemoveUserOfWorkgroup)
	workgroups.Delete("/deleteWorkgroup", workgroupHandler.DeleteWorkgroup)

	// Database routes
	databases := app.Group("/database", middleware.AuthUser(db, cfg.JWTKey))
	databases.Get("/getDatabases/:workgroupId", databaseHandler.GetDatabases)
	databases.Get("/getDatabase/:workgroupId/:databaseId", databaseHandler.GetDatabase)
	databases.Post("/createDatabaseGroup", databaseHandler.CreateDatabaseGroup)
	databases.Put("/duplicateDatabase", databaseHandler.DuplicateDatabase)
	databases.Put("/renameDatabase", databaseHandler.RenameDatabase)
	databases.Put("/updateDatabase", databaseHandler.UpdateDatabase)

	// Translation routes
	app.Post("/translation/translateJsonToSql", translationHandler.TranslateJSONToSQL)

	// Health
	app.Get("/health", healthHandler.GetHealth)

	// Collaborative canvas socket endpoint. The session manager carries its
	// own token handling because socket clients authenticate per-connection,
	// not through the HTTP middleware.
	registry := canvas.NewSessionRegistry()
	manager := canvas.NewManager(
		registry,
		&services.DocumentStore{DB: db},
		&services.TokenResolver{DB: db, JWTKey: cfg.JWTKey},
		&services.PermissionChecker{DB: db},
		cfg.CanvasAllowObservers,
	)
	app.Use("/sqlizer", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/sqlizer", websocket.New(manager.Handler()))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if f, ok := types.AsFault(err); ok {
		code = f.StatusCode()
		message = f.Message
		errorType = f.Type
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
