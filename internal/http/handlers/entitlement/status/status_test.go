package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fitness-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, uid, email string) (*models.EntitlementStatus, error) {
	args := m.Called(ctx, uid, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementStatus), args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "premium с истечением",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "user-1", "one@example.com").
					Return(&models.EntitlementStatus{
						Tier:          models.TierPremium,
						Premium:       true,
						PremiumExpiry: &expiry,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"premium":true`,
		},
		{
			name:         "free пользователь",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "user-1", "one@example.com").
					Return(&models.EntitlementStatus{Tier: models.TierFree, Premium: false}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"premium":false`,
		},
		{
			name:           "пользователь не авторизован",
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:         "ошибка сервиса",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "user-1", "one@example.com").
					Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not get entitlement status"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/entitlement", nil)
			if tt.withIdentity {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "user-1")
				ctx = context.WithValue(ctx, middlewarectx.Email, "one@example.com")
				req = req.WithContext(ctx)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
