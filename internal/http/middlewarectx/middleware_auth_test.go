package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("user-1", "one@example.com")
	require.NoError(t, err)

	var gotUID, gotEmail string
	handler := JWTMiddleware(maker, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = r.Context().Value(UserUID).(string)
		gotEmail, _ = r.Context().Value(Email).(string)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUID)
	assert.Equal(t, "one@example.com", gotEmail)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	handler := JWTMiddleware(maker, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	other := jwt.NewJWTMaker("other-secret", time.Hour)
	token, err := other.GenerateToken("user-1", "one@example.com")
	require.NoError(t, err)

	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	handler := JWTMiddleware(maker, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type EntitlementMock struct{ mock.Mock }

func (m *EntitlementMock) Status(ctx context.Context, uid, email string) (*models.EntitlementStatus, error) {
	args := m.Called(ctx, uid, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementStatus), args.Error(1)
}

func premiumRequest(uid string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserUID, uid)
	ctx = context.WithValue(ctx, Email, uid+"@example.com")
	return req.WithContext(ctx)
}

func TestPremiumMiddleware_AllowsPremium(t *testing.T) {
	svc := new(EntitlementMock)
	svc.On("Status", mock.Anything, "user-1", "user-1@example.com").
		Return(&models.EntitlementStatus{Tier: models.TierPremium, Premium: true}, nil)

	called := false
	handler := PremiumMiddleware(newTestLogger(), svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, premiumRequest("user-1"))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPremiumMiddleware_RejectsFree(t *testing.T) {
	svc := new(EntitlementMock)
	svc.On("Status", mock.Anything, "user-1", "user-1@example.com").
		Return(&models.EntitlementStatus{Tier: models.TierFree, Premium: false}, nil)

	handler := PremiumMiddleware(newTestLogger(), svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, premiumRequest("user-1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPremiumMiddleware_MissingIdentity(t *testing.T) {
	svc := new(EntitlementMock)
	handler := PremiumMiddleware(newTestLogger(), svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Status", mock.Anything, mock.Anything, mock.Anything)
}
