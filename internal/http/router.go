package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/you/consultsite/internal/http/handlers"
	"github.com/you/consultsite/internal/http/middleware"
	"github.com/you/consultsite/internal/metrics"
)

// Deps are the pieces BuildRouter mounts
type Deps struct {
	Auth       *handlers.AuthHandlers
	Dashboard  *handlers.DashboardHandlers
	Policies   *handlers.PolicyHandlers
	Gatekeeper *middleware.Gatekeeper
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	StaticDir  string
}

func BuildRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(d.Gatekeeper.Handler())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	}

	r.GET("/", func(c *gin.Context) {
		_, signedIn := middleware.SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"signed_in": signedIn}})
	})
	r.GET("/login", d.Auth.LoginPage)
	r.GET("/signup", d.Auth.SignupPage)

	auth := r.Group("/auth")
	auth.POST("/otp/request", d.Auth.RequestCode)
	auth.POST("/otp/resend", d.Auth.ResendCode)
	auth.POST("/otp/verify", d.Auth.VerifyCode)
	auth.POST("/signout", d.Auth.SignOut)

	dash := r.Group("/dashboard").Use(middleware.RequireSession())
	dash.GET("", d.Dashboard.Overview)
	dash.GET("/account", d.Dashboard.Account)
	dash.POST("/account", d.Dashboard.UpdateAccount)
	dash.GET("/chats", d.Dashboard.Chats)
	dash.POST("/chats", d.Dashboard.CreateChat)
	dash.DELETE("/chats/:id", d.Dashboard.DeleteChat)

	adm := r.Group("/dashboard/admin").Use(middleware.RequireSession(), middleware.RequireRole("admin"))
	adm.GET("/policies", d.Policies.List)
	adm.POST("/policies", d.Policies.Add)
	adm.DELETE("/policies", d.Policies.Remove)

	return r
}
