package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-school/activitymap"
	"github.com/goliatone/go-school/auth"
	"github.com/goliatone/go-school/config"
	"github.com/goliatone/go-school/persistence"
	"github.com/goliatone/go-school/school"
)

const (
	allowedMethods = "GET,POST,PUT,DELETE,OPTIONS"
	allowedHeaders = "Content-Type,Authorization"
)

// PublicRoutes are listed by GET /api/test
var PublicRoutes = []string{
	"GET /",
	"GET /api/test",
	"GET /health",
	"POST /api/auth/login",
	"POST /api/auth/register",
}

// Server wires the HTTP application to its storage and auth services
type Server struct {
	cfg         config.Config
	logger      *slog.Logger
	srv         router.Server[*fiber.App]
	db          *bun.DB
	ownsDB      bool
	redis       *redis.Client
	revocations auth.RevocationStore

	users  auth.RepositoryManager
	school school.RepositoryManager
	auther *auth.Auther

	closeOnce sync.Once
}

type Option func(*Server)

// WithLogger sets the process logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDB uses an already opened database, the caller keeps ownership
func WithDB(db *bun.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

// WithRevocationStore overrides the store selected from the configuration
func WithRevocationStore(store auth.RevocationStore) Option {
	return func(s *Server) {
		s.revocations = store
	}
}

// New opens the database, applies migrations, seeds the administrator
// and mounts every route
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	auth.SetPasswordHashCost(cfg.Auth.BcryptCost)
	if cfg.PhoneRegion != "" {
		school.PhoneRegion = cfg.PhoneRegion
	}

	if cfg.Dev {
		s.logger.Debug("configuration", "config", print.MaybePrettyJSON(cfg.Redacted()))
	}

	if err := s.openDB(ctx); err != nil {
		return nil, err
	}

	if err := persistence.Migrate(ctx, s.db); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.openRevocations(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.users = auth.NewRepositoryManager(s.db)
	s.school = school.NewRepositoryManager(s.db)

	if err := s.seed(ctx); err != nil {
		s.Close()
		return nil, err
	}

	authLogger := s.logger.With("module", "auth")
	provider := auth.NewUserProvider(auth.NewUserTracker(s.users.Users())).WithLogger(authLogger)
	s.auther = auth.NewAuthenticator(provider, cfg.Auth).WithLogger(authLogger)

	s.srv = router.NewFiberAdapter(s.newFiberApp)
	s.routes(s.srv.Router().WithLogger(s.logger.With("module", "router")))

	return s, nil
}

func (s *Server) openDB(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := persistence.Open(ctx, s.cfg.Database)
	if err != nil {
		return err
	}
	s.db = db
	s.ownsDB = true
	return nil
}

func (s *Server) openRevocations(ctx context.Context) error {
	if s.revocations != nil {
		return nil
	}

	if !s.cfg.Redis.Enabled() {
		s.logger.Info("using in memory token revocation store")
		s.revocations = auth.NewMemoryRevocationStore()
		return nil
	}

	opts, err := redis.ParseURL(s.cfg.Redis.URL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to connect to redis").
			WithMetadata(map[string]any{"addr": opts.Addr})
	}

	s.redis = client
	s.revocations = auth.NewRedisRevocationStore(client)
	s.logger.Info("using redis token revocation store", "addr", opts.Addr)
	return nil
}

// seed creates the owner account unless one with the same email exists
func (s *Server) seed(ctx context.Context) error {
	if !s.cfg.Seed.Enabled {
		return nil
	}

	hash, err := auth.HashPassword(s.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(s.cfg.Seed.AdminEmail))
	if existing, err := s.users.Users().GetByIdentifier(ctx, email); err == nil {
		s.logger.Info("administrator present", "user_id", existing.ID.String())
		return nil
	}

	record := &auth.User{
		Name:         s.cfg.Seed.AdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleOwner,
	}

	// stable id across fresh databases
	if id, err := hashid.NewUUID(email); err == nil {
		record.ID = id
	}

	admin, err := s.users.Users().GetOrCreate(ctx, record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to seed administrator")
	}

	s.logger.Info("administrator ready", "user_id", admin.ID.String(), "email", admin.Email)
	return nil
}

func (s *Server) newFiberApp(_ *fiber.App) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "school-api",
		DisableStartupMessage: true,
		ErrorHandler:          auth.HTTPErrorHandler(s.logger.With("module", "http")),
	})

	app.Use(recover.New())

	origins := strings.Join(s.cfg.HTTP.CORSOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins != "*",
		AllowMethods:     allowedMethods,
		AllowHeaders:     allowedHeaders,
	}))

	return app
}

func (s *Server) routes(r router.Router[*fiber.App]) {
	activity := activitymap.LogSink(s.logger.With("module", "activity"))

	r.Get("/", func(c router.Context) error {
		return c.SendString("Welcome to School API!")
	}).SetName("home")

	r.Get("/health", s.health).SetName("health")

	api := r.Group("/api")
	api.Get("/test", func(c router.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"message": "API endpoints are working!",
			"routes":  PublicRoutes,
		})
	}).SetName("api.test")

	protected := auth.ProtectedRoute(s.cfg.Auth, s.auther.TokenService(),
		auth.WithValidationListeners(auth.RevocationCheck(s.revocations, s.logger.With("module", "auth"))),
	)

	auth.RegisterAuthRoutes(api.Group("/auth"), protected,
		auth.WithControllerRepo(s.users),
		auth.WithControllerAuther(s.auther),
		auth.WithControllerRevocations(s.revocations),
		auth.WithControllerLogger(s.logger.With("module", "auth:ctrl")),
		auth.WithControllerActivity(activity),
		auth.WithControllerDebug(s.cfg.Dev),
		func(ac *auth.AuthController) *auth.AuthController {
			ac.ContextKey = s.cfg.Auth.GetContextKey()
			return ac
		},
	)

	school.RegisterRoutes(api, protected,
		school.WithRepo(s.school),
		school.WithLogger(s.logger.With("module", "school:ctrl")),
		school.WithActivitySink(activity),
		school.WithDebug(s.cfg.Dev),
	)
}

func (s *Server) health(c router.Context) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// App returns the fiber application with every route registered
func (s *Server) App() *fiber.App {
	return s.srv.WrappedRouter()
}

// Routes lists the registered route definitions
func (s *Server) Routes() []router.RouteDefinition {
	return s.srv.Router().Routes()
}

// Listen serves until ctx is done and then shuts down gracefully
func (s *Server) Listen(ctx context.Context) error {
	addr := s.cfg.HTTP.Addr()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- s.srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "server shutdown failed")
	}
	return nil
}

// Close releases the database and redis connections the server opened
func (s *Server) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if s.redis != nil {
			errs = append(errs, s.redis.Close())
		}
		if s.ownsDB && s.db != nil {
			errs = append(errs, s.db.Close())
		}
	})
	return errors.Join(errs...)
}
