package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/config"
	httpx "github.com/you/consultsite/internal/http"
	"github.com/you/consultsite/internal/http/handlers"
	"github.com/you/consultsite/internal/http/middleware"
	"github.com/you/consultsite/internal/infrastructure/auth"
	"github.com/you/consultsite/internal/infrastructure/database"
	"github.com/you/consultsite/internal/infrastructure/notifications"
	"github.com/you/consultsite/internal/infrastructure/repositories"
	"github.com/you/consultsite/internal/logger"
	"github.com/you/consultsite/internal/metrics"
	"github.com/you/consultsite/internal/otp"
	"github.com/you/consultsite/internal/provider"
	"github.com/you/consultsite/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB       *gorm.DB
	Redis    *database.RedisClient
	Casbin   *auth.CasbinService
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories
	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository
	ProfileRepo domain.ProfileRepository
	ChatRepo    domain.ChatRepository

	// Provider backend
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	PolicySvc       domain.PolicyService
	Audit           domain.AuditLogger

	// Records
	ProfileSvc domain.ProfileService
	ChatSvc    domain.ChatService

	// Web layer
	Provider domain.AuthProvider
	Flows    *otp.Store

	resolveProvider func(build func() (domain.AuthProvider, error)) (domain.AuthProvider, error)
}

// Option customises a Container
type Option func(*Container)

// WithSharedProvider binds the container to the process-wide provider
// client. Only the first container built with it in a process gets a
// client over its own services; later ones reuse that client, so it is
// meant for the single serving container.
func WithSharedProvider() Option {
	return func(c *Container) { c.resolveProvider = provider.Shared }
}

// NewContainer creates and initializes all dependencies. By default the
// container owns its provider client.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{Config: cfg, resolveProvider: buildProvider}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPolicies(); err != nil {
		c.Close()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	if err := c.initWeb(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DBDriver, c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	c.Redis = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Redis.Ping(pingCtx)
}

func (c *Container) initPolicies() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	added, err := cas.Seed(auth.DefaultRecordPolicies)
	if err != nil {
		return err
	}
	if added > 0 {
		logger.Info("casbin: seeded default policies", zap.Int("added", added))
	}
	c.Casbin = cas
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.Redis.Client)
	c.ProfileRepo = repositories.NewProfileRepository(c.DB)
	c.ChatRepo = repositories.NewChatRepository(c.DB)
}

func (c *Container) initServices() {
	c.Audit = services.NewAuditLogger(logger.Get())
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)

	otpConfig := services.OTPConfig{
		Length:       c.Config.OTP_Length,
		TTL:          c.Config.OTP_TTL,
		MaxAttempts:  c.Config.OTP_MaxAttempts,
		ResendWindow: c.Config.OTP_ResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, auth.NewCodeHasher(0), c.Redis.Client, otpConfig, c.Audit)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.SessionRepo, c.TokenSvc, c.OTPSvc, c.Audit)

	c.PolicySvc = services.NewPolicyService(c.Casbin.E)
	recordPolicy := services.NewRecordPolicy(c.PolicySvc, c.Audit)
	c.ProfileSvc = services.NewProfileService(c.ProfileRepo, c.UserRepo, recordPolicy)
	c.ChatSvc = services.NewChatService(c.ChatRepo, recordPolicy)
}

func buildProvider(build func() (domain.AuthProvider, error)) (domain.AuthProvider, error) {
	return build()
}

func (c *Container) initWeb() error {
	p, err := c.resolveProvider(func() (domain.AuthProvider, error) {
		return provider.NewClient(c.AuthSvc, c.OTPSvc, provider.Options{
			Cookies: provider.CookieOptions{
				Prefix: c.Config.CookiePrefix,
				Domain: c.Config.CookieDomain,
				Secure: c.Config.CookieSecure,
			},
			RefreshTTL: c.Config.RefreshTTL,
		}), nil
	})
	if err != nil {
		return fmt.Errorf("auth provider: %w", err)
	}
	c.Provider = p

	window := c.Config.OTP_ClientWindow
	c.Flows = otp.NewStore(func(id string) *otp.Flow {
		return otp.NewFlow(id, c.Provider, otp.WithWindow(window))
	}, c.Config.FlowIdleTTL)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)
	c.Metrics.TrackFlows(c.Registry, c.Flows.Len)
	return nil
}

// Router builds the HTTP handler for the site
func (c *Container) Router() *gin.Engine {
	return httpx.BuildRouter(httpx.Deps{
		Auth:       handlers.NewAuthHandlers(c.Provider, c.Flows, c.Metrics, c.Config.CookieSecure),
		Dashboard:  handlers.NewDashboardHandlers(c.ProfileSvc, c.ChatSvc),
		Policies:   handlers.NewPolicyHandlers(c.PolicySvc),
		Gatekeeper: middleware.NewGatekeeper(c.Provider, c.Config.CookiePrefix, c.Metrics),
		Metrics:    c.Metrics,
		Gatherer:   c.Registry,
		StaticDir:  c.Config.StaticDir,
	})
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
