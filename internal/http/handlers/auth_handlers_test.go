package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/metrics"
	"github.com/you/consultsite/internal/mocks"
	"github.com/you/consultsite/internal/otp"
)

const testPhone = "+15551234567"

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router   *gin.Engine
	provider *mocks.MockAuthProvider
	flows    *otp.Store
	metrics  *metrics.Metrics
}

func setupAuthRouter(t *testing.T) *authFixture {
	t.Helper()

	p := mocks.NewMockAuthProvider()
	flows := otp.NewStore(func(id string) *otp.Flow { return otp.NewFlow(id, p) }, time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	h := NewAuthHandlers(p, flows, m, false)

	r := gin.New()
	r.GET("/login", h.LoginPage)
	r.GET("/signup", h.SignupPage)
	r.POST("/auth/otp/request", h.RequestCode)
	r.POST("/auth/otp/resend", h.ResendCode)
	r.POST("/auth/otp/verify", h.VerifyCode)
	r.POST("/auth/signout", h.SignOut)

	return &authFixture{router: r, provider: p, flows: flows, metrics: m}
}

func (f *authFixture) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// requestCode starts a flow and returns its cookie
func (f *authFixture) requestCode(t *testing.T, phone string) *http.Cookie {
	t.Helper()

	w := f.do(http.MethodPost, "/auth/otp/request", gin.H{"phone": phone})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == otp.FlowCookie {
			return c
		}
	}
	t.Fatal("flow cookie not set")
	return nil
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAuthHandlers_RequestCode(t *testing.T) {
	tests := []struct {
		name       string
		phone      string
		sendErr    error
		wantStatus int
		wantError  string
		wantSends  int32
	}{
		{
			name:       "code sent",
			phone:      testPhone,
			wantStatus: http.StatusOK,
			wantSends:  1,
		},
		{
			name:       "malformed phone never reaches provider",
			phone:      "5551234567",
			wantStatus: http.StatusBadRequest,
			wantError:  domain.ErrInvalidPhone.Error(),
		},
		{
			name:       "provider rate limit shown verbatim",
			phone:      testPhone,
			sendErr:    &domain.ProviderError{Op: "send_otp", Kind: domain.ProviderRateLimited, Message: "otp resend limit exceeded: retry in 30 seconds"},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "otp resend limit exceeded: retry in 30 seconds",
			wantSends:  1,
		},
		{
			name:       "provider outage",
			phone:      testPhone,
			sendErr:    &domain.ProviderError{Op: "send_otp", Kind: domain.ProviderUnavailable, Message: "service unavailable"},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "service unavailable",
			wantSends:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthRouter(t)
			if tt.sendErr != nil {
				f.provider.SendOTPFunc = func(ctx context.Context, phone string) error { return tt.sendErr }
			}

			w := f.do(http.MethodPost, "/auth/otp/request", gin.H{"phone": tt.phone})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSends, f.provider.SendOTPCalls.Load())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, w))
				return
			}
			data := decodeData(t, w)
			assert.Equal(t, "otp", data["step"])
			assert.Equal(t, testPhone, data["phone"])
			assert.InDelta(t, otp.DefaultWindow.Seconds(), data["expires_in"], 1)
		})
	}
}

func TestAuthHandlers_RequestCodeMissingPhone(t *testing.T) {
	f := setupAuthRouter(t)

	w := f.do(http.MethodPost, "/auth/otp/request", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), f.provider.SendOTPCalls.Load())
}

func TestAuthHandlers_VerifyCode(t *testing.T) {
	t.Run("success sets session cookies and redirects to dashboard", func(t *testing.T) {
		f := setupAuthRouter(t)
		f.provider.VerifyOTPFunc = func(ctx context.Context, phone, code string, jar domain.CookieJar) (*domain.AuthResult, error) {
			jar.SetCookie(&http.Cookie{Name: "sb-consultsite-auth-token-access", Value: "at", Path: "/", MaxAge: 900})
			user := &domain.User{ID: 7, Phone: phone, Role: "user"}
			return &domain.AuthResult{User: user, Session: &domain.Session{ID: "s", UserID: 7, User: user}}, nil
		}
		flow := f.requestCode(t, testPhone)

		w := f.do(http.MethodPost, "/auth/otp/verify", gin.H{"code": "123456"}, flow)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := decodeData(t, w)
		assert.Equal(t, "/dashboard", data["redirect"])
		assert.Equal(t, float64(7), data["user"].(map[string]interface{})["id"])

		var names []string
		for _, c := range w.Result().Cookies() {
			names = append(names, c.Name)
		}
		assert.Contains(t, names, "sb-consultsite-auth-token-access")
		assert.Equal(t, 0, f.flows.Len(), "completed flow is forgotten")
	})

	redirects := []struct {
		name   string
		target string
		want   string
	}{
		{name: "original protected page", target: "/dashboard/account", want: "/dashboard/account"},
		{name: "offsite url", target: "https://evil.example", want: "/dashboard"},
		{name: "protocol relative", target: "//evil.example", want: "/dashboard"},
		{name: "back to login", target: "/login", want: "/dashboard"},
	}
	for _, tt := range redirects {
		t.Run("redirect "+tt.name, func(t *testing.T) {
			f := setupAuthRouter(t)
			flow := f.requestCode(t, testPhone)

			w := f.do(http.MethodPost, "/auth/otp/verify", gin.H{"phone": testPhone, "code": "123456", "redirect": tt.target}, flow)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decodeData(t, w)["redirect"])
		})
	}

	t.Run("wrong code keeps the flow", func(t *testing.T) {
		f := setupAuthRouter(t)
		flow := f.requestCode(t, testPhone)

		w := f.do(http.MethodPost, "/auth/otp/verify", gin.H{"code": "000000"}, flow)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid otp code", decodeError(t, w))
		assert.Equal(t, 1, f.flows.Len())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OTPOperations.WithLabelValues("verify", metrics.OutcomeError)))
	})

	t.Run("no pending verification", func(t *testing.T) {
		f := setupAuthRouter(t)

		w := f.do(http.MethodPost, "/auth/otp/verify", gin.H{"phone": testPhone, "code": "123456"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.ErrOTPExpired.Error(), decodeError(t, w))
		assert.Equal(t, int32(0), f.provider.VerifyOTPCalls.Load())
	})

	t.Run("incomplete provider response", func(t *testing.T) {
		f := setupAuthRouter(t)
		f.provider.VerifyOTPFunc = func(ctx context.Context, phone, code string, jar domain.CookieJar) (*domain.AuthResult, error) {
			return &domain.AuthResult{}, nil
		}
		flow := f.requestCode(t, testPhone)

		w := f.do(http.MethodPost, "/auth/otp/verify", gin.H{"code": "123456"}, flow)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAuthHandlers_ResendCode(t *testing.T) {
	f := setupAuthRouter(t)
	flow := f.requestCode(t, testPhone)

	w := f.do(http.MethodPost, "/auth/otp/resend", gin.H{"phone": testPhone}, flow)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(2), f.provider.SendOTPCalls.Load())
	assert.Empty(t, w.Result().Cookies(), "existing flow is reused")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OTPOperations.WithLabelValues("resend", metrics.OutcomeOK)))
}

func TestAuthHandlers_ConcurrentRequestIsSkipped(t *testing.T) {
	f := setupAuthRouter(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	f.provider.SendOTPFunc = func(ctx context.Context, phone string) error {
		close(entered)
		<-release
		return nil
	}
	created, _ := f.flows.GetOrCreate("")
	flow := &http.Cookie{Name: otp.FlowCookie, Value: created.ID()}

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- f.do(http.MethodPost, "/auth/otp/request", gin.H{"phone": testPhone}, flow) }()
	<-entered

	w := f.do(http.MethodPost, "/auth/otp/resend", gin.H{"phone": testPhone}, flow)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, decodeData(t, w)["skipped"])

	close(release)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, int32(1), f.provider.SendOTPCalls.Load())
}

func TestAuthHandlers_Pages(t *testing.T) {
	f := setupAuthRouter(t)

	w := f.do(http.MethodGet, "/login?redirect=%2Fdashboard%2Fchats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "login", data["page"])
	assert.Equal(t, "phone", data["step"])
	assert.Equal(t, "/dashboard/chats", data["redirect"])
	assert.Equal(t, 0, f.flows.Len(), "viewing the page does not start a flow")

	flow := f.requestCode(t, testPhone)
	w = f.do(http.MethodGet, "/signup", nil, flow)
	data = decodeData(t, w)
	assert.Equal(t, "signup", data["page"])
	assert.Equal(t, "otp", data["step"])
	assert.Equal(t, testPhone, data["phone"])
	assert.Greater(t, data["expires_in"], float64(0))
}

func TestAuthHandlers_SignOut(t *testing.T) {
	f := setupAuthRouter(t)
	f.provider.SignOutFunc = func(ctx context.Context, jar domain.CookieJar) error {
		jar.SetCookie(&http.Cookie{Name: "sb-consultsite-auth-token-access", Path: "/", MaxAge: -1})
		return nil
	}

	w := f.do(http.MethodPost, "/auth/signout", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", decodeData(t, w)["redirect"])
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandlers_SignOutProviderFailure(t *testing.T) {
	f := setupAuthRouter(t)
	f.provider.SignOutFunc = func(ctx context.Context, jar domain.CookieJar) error {
		return &domain.ProviderError{Op: "sign_out", Kind: domain.ProviderUnavailable, Message: "service unavailable"}
	}

	w := f.do(http.MethodPost, "/auth/signout", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
