// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pantryshift/internal/config"
	"pantryshift/internal/database"
	"pantryshift/internal/middleware"
	"pantryshift/internal/models"
	"pantryshift/internal/repository"
	"pantryshift/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	actorResolver  middleware.ActorResolver

	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	pantryRepo repository.PantryRepository
	shiftRepo  repository.ShiftRepository
	signupRepo repository.SignupRepository

	policy        *service.Policy
	userService   *service.UserService
	pantryService *service.PantryService
	shiftService  *service.ShiftService
	signupService *service.SignupService
	publicService *service.PublicService

	// writeMu serializes every mutating operation so capacity checks and
	// derived counters never race. All services share it.
	writeMu sync.Mutex
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db)
}

// NewServerWithDeps creates a Server using an already-initialized database.
// Use this in tests or when a bootstrap layer establishes the DB and
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: middleware.InitMetrics("pantryshift-api"),
		actorResolver:  middleware.QueryActorResolver{DefaultID: cfg.DefaultActorID},
	}
	server.wire()
	return server, nil
}

// wire builds the repository and service graph over s.db. Split out so tests
// can assemble a Server without touching the process-wide metrics registry.
func (s *Server) wire() {
	s.userRepo = repository.NewUserRepository(s.db)
	s.roleRepo = repository.NewRoleRepository(s.db)
	s.pantryRepo = repository.NewPantryRepository(s.db)
	s.shiftRepo = repository.NewShiftRepository(s.db)
	s.signupRepo = repository.NewSignupRepository(s.db)

	s.policy = service.NewPolicy(s.userRepo, s.pantryRepo)
	s.userService = service.NewUserService(s.userRepo, s.roleRepo, s.policy, &s.writeMu)
	s.pantryService = service.NewPantryService(s.pantryRepo, s.userRepo, s.policy, &s.writeMu)
	s.shiftService = service.NewShiftService(s.db, s.shiftRepo, s.pantryRepo, s.policy, &s.writeMu)
	s.signupService = service.NewSignupService(s.db, s.signupRepo, s.shiftRepo, s.userRepo, s.policy, &s.writeMu)
	s.publicService = service.NewPublicService(s.pantryRepo, s.shiftRepo)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Resolve the acting user before context propagation so the logger
	// sees the actor id.
	app.Use(middleware.ResolveActor(s.actorResolver))

	// Context Middleware to propagate Request ID and Actor ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Pantry Shift Metrics Dashboard",
	}))

	// Current actor
	api.Get("/me", s.GetMe)

	// Public volunteer board
	api.Get("/public/pantries/:slug/shifts", s.GetPublicShifts)

	// Role catalog
	api.Get("/roles", s.GetRoles)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/", s.CreateUser)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/signups", s.GetUserSignups)
	users.Post("/:id/roles", s.GrantUserRole)
	users.Delete("/:id/roles/:roleId", s.RevokeUserRole)
	users.Get("/:id", s.GetUser)

	// Pantry routes
	pantries := api.Group("/pantries")
	pantries.Get("/", s.GetPantries)
	pantries.Post("/", s.CreatePantry)
	// Specific /slug route before generic /:id
	pantries.Get("/slug/:slug", s.GetPantryBySlug)
	pantries.Get("/:id/leads", s.GetPantryLeads)
	pantries.Post("/:id/leads", s.AddPantryLead)
	pantries.Delete("/:id/leads/:userId", s.RemovePantryLead)
	pantries.Get("/:id/shifts", s.GetPantryShifts)
	pantries.Post("/:id/shifts", s.CreateShift)
	pantries.Get("/:id", s.GetPantry)

	// Shift routes
	shifts := api.Group("/shifts")
	shifts.Get("/:id/roles", s.GetShiftRoles)
	shifts.Post("/:id/roles", s.CreateShiftRole)
	shifts.Get("/:id", s.GetShift)
	shifts.Patch("/:id", s.UpdateShift)
	shifts.Delete("/:id", s.DeleteShift)

	// Shift role routes
	shiftRoles := api.Group("/shift-roles")
	shiftRoles.Get("/:id/signups", s.GetShiftRoleSignups)
	shiftRoles.Post("/:id/signup", s.CreateSignup)
	shiftRoles.Patch("/:id", s.UpdateShiftRole)
	shiftRoles.Delete("/:id", s.DeleteShiftRole)

	// Signup routes
	signups := api.Group("/signups")
	signups.Patch("/:id", s.UpdateSignupStatus)
	signups.Delete("/:id", s.CancelSignup)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Pantry Shift API",
		BodyLimit: 1 * 1024 * 1024, // 1MB limit
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
