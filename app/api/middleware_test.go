package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbet/exchange/internal/security"
)

func newTestMaker(t *testing.T) security.Maker {
	t.Helper()
	maker, err := security.NewPasetoMaker("01234567890123456789012345678901")
	require.NoError(t, err)
	return maker
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	maker := newTestMaker(t)

	newRouter := func() (*gin.Engine, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/protected", Authenticate(maker), func(c *gin.Context) {
			userID := c.GetString("user_id")
			c.JSON(http.StatusOK, gin.H{"user_id": userID})
		})
		return r, w
	}

	t.Run("valid token", func(t *testing.T) {
		token, _, err := maker.CreateToken("user-1", []string{"market:create"}, 2, time.Minute, security.TokenScopeAccess)
		require.NoError(t, err)

		r, w := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-1")
	})

	t.Run("missing header", func(t *testing.T) {
		r, w := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r, w := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, _, err := maker.CreateToken("user-1", nil, 0, -time.Minute, security.TokenScopeAccess)
		require.NoError(t, err)

		r, w := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		token, _, err := maker.CreateToken("user-1", nil, 0, time.Minute, security.TokenScopeRefresh)
		require.NoError(t, err)

		r, w := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("maker rejection is unauthorized", func(t *testing.T) {
		mockMaker := new(security.MockMaker)
		mockMaker.On("VerifyToken", "garbage").Return(nil, security.ErrInvalidToken)

		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/protected", Authenticate(mockMaker), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockMaker.AssertExpectations(t)
	})
}

func TestCan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(permissions interface{}, set bool) (*gin.Engine, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) {
			if set {
				c.Set("permissions", permissions)
			}
		}, Can("market:resolve"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r, w
	}

	t.Run("has permission", func(t *testing.T) {
		r, w := newRouter([]string{"market:create", "market:resolve"}, true)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("lacks permission", func(t *testing.T) {
		r, w := newRouter([]string{"market:create"}, true)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no permissions in context", func(t *testing.T) {
		r, w := newRouter(nil, false)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wrong type in context", func(t *testing.T) {
		r, w := newRouter("market:resolve", true)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireKYC(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(kycLevel interface{}, set bool) (*gin.Engine, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/bet", func(c *gin.Context) {
			if set {
				c.Set("kyc_level", kycLevel)
			}
		}, RequireKYC(2), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r, w
	}

	t.Run("sufficient level", func(t *testing.T) {
		r, w := newRouter(2, true)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bet", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("insufficient level", func(t *testing.T) {
		r, w := newRouter(1, true)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bet", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing level", func(t *testing.T) {
		r, w := newRouter(nil, false)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bet", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
