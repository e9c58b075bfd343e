package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partmatch/internal/domain/entity"
	"partmatch/pkg/errors"
)

type stubProfiles map[string]*entity.Profile

func (s stubProfiles) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	p, ok := s[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return p, nil
}

func (s stubProfiles) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	return nil, nil
}

func (s stubProfiles) ListInsightsSubscribers(ctx context.Context) ([]*entity.Profile, error) {
	return nil, nil
}

func TestAdminOnly(t *testing.T) {
	m := NewAdminMiddleware(stubProfiles{
		"root": {ID: "root", Role: "admin"},
		"joe":  {ID: "joe", Role: "buyer"},
	})
	e := echo.New()

	tests := []struct {
		uid  string
		code int
	}{
		{"", http.StatusUnauthorized},
		{"ghost", http.StatusInternalServerError},
		{"joe", http.StatusForbidden},
		{"root", http.StatusOK},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/admin/insights/run", nil), httptest.NewRecorder())
		if tt.uid != "" {
			c.Set("uid", tt.uid)
		}

		called := false
		err := m.AdminOnly(func(c echo.Context) error {
			called = true
			return nil
		})(c)

		if tt.code == http.StatusOK {
			require.NoError(t, err)
			assert.True(t, called)
			continue
		}
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, tt.uid)
		assert.Equal(t, tt.code, httpErr.Code, tt.uid)
		assert.False(t, called, tt.uid)
	}
}
