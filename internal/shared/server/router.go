package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-intake/internal/auth"
	"referral-intake/internal/referrals"
	"referral-intake/internal/services/health"
	"referral-intake/internal/sessions"
	"referral-intake/internal/shared/config"
	"referral-intake/internal/shared/metrics"
	"referral-intake/internal/shared/server/middleware"
	"referral-intake/internal/shared/server/respond"
	"referral-intake/internal/shared/telemetry"
)

const (
	rateGroupLogin  = "LOGIN"
	rateGroupSubmit = "SUBMIT"
)

// RouterDeps are the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Sessions        *sessions.Manager
	AuthHandler     *auth.Handler
	ReferralHandler *referrals.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Forwarded headers are only honoured from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		telemetry.Warn("server.trusted_proxies_invalid", map[string]any{"error": err.Error()})
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupLogin:  perMinute(cfg.LoginRatePerMinute),
				rateGroupSubmit: perMinute(cfg.SubmitRatePerMin),
			},
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}
	r.GET("/health", func(c *gin.Context) {
		ok, checks := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ok": ok, "checks": checks})
	})
	r.GET("/metrics", metrics.Handler())

	public := r.Group("/")
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(public)
	}
	if deps.ReferralHandler != nil {
		deps.ReferralHandler.RegisterPublicRoutes(public)

		admin := r.Group("/")
		admin.Use(middleware.RequireSession(deps.Sessions, middleware.AuthFailurePolicy{
			Redirect:    cfg.AuthFailureMode == config.AuthFailureRedirect,
			RedirectURL: cfg.LoginRedirectURL,
		}))
		deps.ReferralHandler.RegisterAdminRoutes(admin)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

func rateGroupFor(c *gin.Context) string {
	switch c.FullPath() {
	case "/login":
		return rateGroupLogin
	case "/submit":
		return rateGroupSubmit
	default:
		return ""
	}
}

// perMinute turns a per-minute budget into a bucket that allows the whole
// budget as a burst. Zero or negative disables the limit.
func perMinute(n int) middleware.RateLimitRule {
	if n <= 0 {
		return middleware.RateLimitRule{}
	}
	return middleware.RateLimitRule{Rate: float64(n) / 60.0, Burst: n}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
