package checkoutcreate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fitness-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, uid, email string, req models.DummyCheckoutRequest) (string, error) {
	args := m.Called(ctx, uid, email, req)
	return args.String(0), args.Error(1)
}

func TestCheckoutCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "успешное создание сессии",
			body:         `{"price_id":"price_monthly"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "user-1", "one@example.com",
					models.DummyCheckoutRequest{PriceID: "price_monthly"}).
					Return("https://checkout.example.com/s/1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"url":"https://checkout.example.com/s/1"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{not json`,
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отсутствует price_id",
			body:           `{}`,
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field PriceID is a required field`,
		},
		{
			name:           "пользователь не авторизован",
			body:           `{"price_id":"price_monthly"}`,
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:         "ошибка провайдера",
			body:         `{"price_id":"price_monthly"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "user-1", "one@example.com", mock.Anything).
					Return("", errors.New("provider down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create checkout session"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/billing/checkout", strings.NewReader(tt.body))
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
