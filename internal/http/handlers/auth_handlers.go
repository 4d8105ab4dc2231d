package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/http/middleware"
	"github.com/you/consultsite/internal/metrics"
	"github.com/you/consultsite/internal/otp"
	"github.com/you/consultsite/internal/routes"
)

// AuthHandlers serves the login and signup pages and the OTP endpoints
type AuthHandlers struct {
	provider     domain.AuthProvider
	flows        *otp.Store
	metrics      *metrics.Metrics
	secureCookie bool
}

// NewAuthHandlers creates new auth handlers. m may be nil.
func NewAuthHandlers(provider domain.AuthProvider, flows *otp.Store, m *metrics.Metrics, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{
		provider:     provider,
		flows:        flows,
		metrics:      m,
		secureCookie: secureCookie,
	}
}

// PhoneRequest starts or restarts a verification
type PhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyRequest submits a code. Phone defaults to the pending one.
type VerifyRequest struct {
	Phone    string `json:"phone"`
	Code     string `json:"code" binding:"required"`
	Redirect string `json:"redirect"`
}

// LoginPage reports the visitor's flow state for the login page
func (h *AuthHandlers) LoginPage(c *gin.Context) { h.page(c, "login") }

// SignupPage reports the visitor's flow state for the signup page.
// Signing up and logging in are the same phone verification.
func (h *AuthHandlers) SignupPage(c *gin.Context) { h.page(c, "signup") }

func (h *AuthHandlers) page(c *gin.Context, name string) {
	state := otp.State{Step: otp.StepPhone}
	var remaining int
	if flow, ok := h.existingFlow(c); ok {
		state = flow.State()
		remaining = int(flow.Remaining().Seconds())
	}

	respondData(c, http.StatusOK, gin.H{
		"page":       name,
		"step":       state.Step,
		"phone":      state.Phone,
		"code":       state.Code,
		"expires_in": remaining,
		"redirect":   safeRedirect(c.Query("redirect")),
	})
}

// RequestCode handles POST /auth/otp/request
func (h *AuthHandlers) RequestCode(c *gin.Context) {
	h.issue(c, "request", func(f *otp.Flow, phone string) (otp.Outcome, error) {
		return f.RequestCode(c.Request.Context(), phone)
	})
}

// ResendCode handles POST /auth/otp/resend
func (h *AuthHandlers) ResendCode(c *gin.Context) {
	h.issue(c, "resend", func(f *otp.Flow, phone string) (otp.Outcome, error) {
		return f.ResendCode(c.Request.Context(), phone)
	})
}

func (h *AuthHandlers) issue(c *gin.Context, op string, send func(*otp.Flow, string) (otp.Outcome, error)) {
	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	flow := h.flowFor(c)
	outcome, err := send(flow, strings.TrimSpace(req.Phone))
	if err != nil {
		h.count(op, metrics.OutcomeError)
		respondFlowError(c, err)
		return
	}
	if outcome.Skipped {
		h.count(op, metrics.OutcomeSkipped)
		respondData(c, http.StatusAccepted, gin.H{"skipped": true})
		return
	}

	h.count(op, metrics.OutcomeOK)
	pending, _ := flow.Pending()
	respondData(c, http.StatusOK, gin.H{
		"step":       otp.StepCode,
		"phone":      pending.Phone,
		"expires_in": int(flow.Remaining().Seconds()),
	})
}

// VerifyCode handles POST /auth/otp/verify. On success the session cookies
// are set and the visitor is told where to go next.
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	flow := h.flowFor(c)
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		if pending, ok := flow.Pending(); ok {
			phone = pending.Phone
		}
	}

	jar := middleware.JarFrom(c)
	outcome, err := flow.VerifyCode(c.Request.Context(), phone, strings.TrimSpace(req.Code), jar)
	if err != nil {
		h.count("verify", metrics.OutcomeError)
		respondFlowError(c, err)
		return
	}
	if outcome.Skipped {
		h.count("verify", metrics.OutcomeSkipped)
		respondData(c, http.StatusAccepted, gin.H{"skipped": true})
		return
	}

	h.count("verify", metrics.OutcomeOK)
	jar.Flush(c.Writer)
	h.flows.Delete(flow.ID())

	redirect := req.Redirect
	if redirect == "" {
		redirect = c.Query("redirect")
	}
	respondData(c, http.StatusOK, gin.H{
		"redirect": safeRedirect(redirect),
		"user": gin.H{
			"id":    outcome.User.ID,
			"phone": outcome.User.Phone,
			"role":  outcome.User.Role,
		},
	})
}

// SignOut handles POST /auth/signout
func (h *AuthHandlers) SignOut(c *gin.Context) {
	jar := middleware.JarFrom(c)
	err := h.provider.SignOut(c.Request.Context(), jar)
	jar.Flush(c.Writer)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"redirect": routes.LoginPath})
}

func (h *AuthHandlers) existingFlow(c *gin.Context) (*otp.Flow, bool) {
	id, err := c.Cookie(otp.FlowCookie)
	if err != nil || id == "" {
		return nil, false
	}
	return h.flows.Get(id)
}

// flowFor returns the visitor's flow, starting one and setting its cookie
// when there is none
func (h *AuthHandlers) flowFor(c *gin.Context) *otp.Flow {
	id, _ := c.Cookie(otp.FlowCookie)
	flow, created := h.flows.GetOrCreate(id)
	if created {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     otp.FlowCookie,
			Value:    flow.ID(),
			Path:     "/",
			Secure:   h.secureCookie,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flow
}

func (h *AuthHandlers) count(op, outcome string) {
	if h.metrics != nil {
		h.metrics.OTPOperations.WithLabelValues(op, outcome).Inc()
	}
}

// safeRedirect keeps post-login redirects on this site
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return routes.DashboardPath
	}
	if routes.IsAuthOnly(target) {
		return routes.DashboardPath
	}
	return target
}
