package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicecart/backend/config"
	"github.com/voicecart/backend/internal/catalog"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/infrastructure/cache"
	"github.com/voicecart/backend/internal/infrastructure/memstore"
	"github.com/voicecart/backend/internal/lexicon"
	"github.com/voicecart/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// switchableRepo is the in-memory cart store with a failure switch
type switchableRepo struct {
	*memstore.CartRepository
	down bool
}

func (r *switchableRepo) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if r.down {
		return errors.New("store unavailable")
	}
	return r.CartRepository.SaveCart(ctx, cart)
}

type testServer struct {
	router *gin.Engine
	repo   *switchableRepo
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}
}

// setupTestServer wires the full stack over in-memory infrastructure
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	products, err := catalog.Default()
	require.NoError(t, err)

	repo := &switchableRepo{CartRepository: memstore.NewCartRepository()}
	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { memCache.Close() })

	resolver := usecase.NewResolver(products, usecase.ResolverConfig{}, logger)
	carts := usecase.NewCartService(repo, memCache, products, resolver, usecase.CartServiceConfig{}, logger)
	sessions := usecase.NewSessionService(carts, logger)
	parser := usecase.NewIntentParser(lexicon.Default(), false, logger)
	voice := usecase.NewVoiceService(parser, resolver, carts, memstore.NewActivityRepository(),
		memstore.NewFeedbackRepository(), usecase.VoiceServiceConfig{}, logger)

	handler := NewHandler(voice, carts, sessions, resolver, products, logger)
	return &testServer{
		router: SetupRouter(testConfig(), handler, logger),
		repo:   repo,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheckEndpoint(t *testing.T) {
	s := setupTestServer(t)

	t.Run("returns healthy status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		response := decode[map[string]interface{}](t, w)
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "voicecart-backend", response["service"])
		assert.NotEmpty(t, response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			w := s.do(t, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
		}
	})
}

func TestVoiceCommandEndpoint(t *testing.T) {
	t.Run("adds to the cart", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/voice/command",
			`{"text":"add two packets of milk","language":"en","userName":"alice"}`)
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[domain.CommandResult](t, w)
		assert.Equal(t, domain.StatusOK, result.Status)
		assert.Equal(t, domain.IntentAdd, result.Intent)
		assert.Equal(t, 2, result.Quantity)
		assert.Equal(t, 2, result.Cart.Quantity("p_milk"))
	})

	t.Run("item not present is a domain outcome", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/voice/command",
			`{"text":"remove bread from my cart","userName":"alice"}`)
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[domain.CommandResult](t, w)
		assert.Equal(t, domain.StatusCartItemNotPresent, result.Status)
	})

	t.Run("persistence failure maps to 503", func(t *testing.T) {
		s := setupTestServer(t)
		s.repo.down = true
		w := s.do(t, http.MethodPost, "/api/v1/voice/command",
			`{"text":"add milk","userName":"alice"}`)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		result := decode[domain.CommandResult](t, w)
		assert.Equal(t, domain.StatusPersistenceFailure, result.Status)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/voice/command", `{"text":"add milk"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[ErrorResponse](t, w).Error, "Invalid request body")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/voice/command", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/sessions", `{"userName":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[map[string]interface{}](t, w)
	assert.Equal(t, false, first["isReturningUser"])
	assert.Equal(t, "Welcome alice! Start shopping with voice commands.", first["message"])

	w = s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	before := s.do(t, http.MethodGet, "/api/v1/cart/alice", "")
	require.Equal(t, http.StatusOK, before.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/sessions/alice", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sessions", `{"userName":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[map[string]interface{}](t, w)
	assert.Equal(t, true, again["isReturningUser"])
	assert.Equal(t, "Welcome back alice! You have 1 item(s) in your cart.", again["message"])

	after := s.do(t, http.MethodGet, "/api/v1/cart/alice", "")
	assert.Equal(t, before.Body.String(), after.Body.String())

	t.Run("rejects missing user", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/sessions", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartEndpoints(t *testing.T) {
	t.Run("add and view with product details", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":2}`)
		require.Equal(t, http.StatusOK, w.Code)

		view := decode[CartView](t, s.do(t, http.MethodGet, "/api/v1/cart/alice", ""))
		require.Len(t, view.Items, 1)
		assert.Equal(t, "Full Cream Milk", view.Items[0].Name)
		assert.Equal(t, 2, view.TotalItems)
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		s := setupTestServer(t)
		view := decode[CartView](t, s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_bread"}`))
		assert.Equal(t, 1, view.TotalItems)
	})

	t.Run("unknown product", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_caviar","quantity":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("negative quantity", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":-1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("quantity cannot overflow a line", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":9223372036854775807}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":10000}`)
		require.Equal(t, http.StatusOK, w.Code)
		w = s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		view := decode[CartView](t, s.do(t, http.MethodGet, "/api/v1/cart/alice", ""))
		assert.Equal(t, 10000, view.TotalItems)
	})

	t.Run("remove some then all", func(t *testing.T) {
		s := setupTestServer(t)
		s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk","quantity":5}`)

		w := s.do(t, http.MethodDelete, "/api/v1/cart/alice/items/p_milk?quantity=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, decode[CartView](t, w).TotalItems)

		w = s.do(t, http.MethodDelete, "/api/v1/cart/alice/items/p_milk", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[CartView](t, w).Items)
	})

	t.Run("remove absent item", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodDelete, "/api/v1/cart/alice/items/p_bread", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.Equal(t, string(domain.StatusCartItemNotPresent), body["status"])
	})

	t.Run("bad remove quantity", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodDelete, "/api/v1/cart/alice/items/p_bread?quantity=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("clear", func(t *testing.T) {
		s := setupTestServer(t)
		s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk"}`)
		w := s.do(t, http.MethodDelete, "/api/v1/cart/alice", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[CartView](t, w).Items)
	})

	t.Run("store down", func(t *testing.T) {
		s := setupTestServer(t)
		s.repo.down = true
		w := s.do(t, http.MethodPost, "/api/v1/cart/alice/items", `{"productId":"p_milk"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Cart storage temporarily unavailable", decode[ErrorResponse](t, w).Error)
	})
}

func TestProductEndpoints(t *testing.T) {
	s := setupTestServer(t)

	t.Run("search", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?q=leche&lang=es", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Count      int              `json:"count"`
			Products   []domain.Product `json:"products"`
			Categories []string         `json:"categories"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotZero(t, body.Count)
		assert.Equal(t, "p_milk", body.Products[0].ID)
		assert.Equal(t, []string{"produce", "dairy", "bakery", "pantry", "beverages"}, body.Categories)
	})

	t.Run("search with a regional language tag", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?q=pan&lang=es-MX", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Products []domain.Product `json:"products"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body.Products)
		assert.Equal(t, "p_bread", body.Products[0].ID)
	})

	t.Run("list respects limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?limit=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decode[map[string]interface{}](t, w)["count"])
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?limit=-3", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get by id with related", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/p_milk", "")
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[ProductDetail](t, w)
		assert.Equal(t, "Full Cream Milk", detail.CanonicalName)
		assert.NotEmpty(t, detail.Related)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/p_caviar", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	s := setupTestServer(t)
	for _, text := range []string{"add milk", "sing a song"} {
		s.do(t, http.MethodPost, "/api/v1/voice/command", `{"text":"`+text+`","userName":"alice"}`)
	}

	w := s.do(t, http.MethodGet, "/api/v1/users/alice/history?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	history := decode[domain.ActivityHistory](t, w)
	assert.Equal(t, 2, history.TotalCommands)
	assert.Equal(t, 1, history.SuccessfulCommands)
	assert.InDelta(t, 50.0, history.SuccessRate, 0.001)
}

func TestInsightEndpoints(t *testing.T) {
	s := setupTestServer(t)
	for _, text := range []string{"add milk", "add milk", "add cheese", "add bread"} {
		w := s.do(t, http.MethodPost, "/api/v1/voice/command", `{"text":"`+text+`","userName":"alice"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	ids := func(products []domain.Product) []string {
		out := make([]string, len(products))
		for i, p := range products {
			out[i] = p.ID
		}
		return out
	}

	t.Run("profile", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/alice/profile", "")
		require.Equal(t, http.StatusOK, w.Code)

		profile := decode[domain.UserProfile](t, w)
		assert.False(t, profile.IsNewUser)
		assert.Equal(t, 4, profile.TotalInteractions)
		assert.Equal(t, "dairy", profile.FavoriteCategory)
		assert.Equal(t, "p_milk", profile.MostAddedProduct)
		assert.Equal(t, map[string]int{"dairy": 3, "bakery": 1}, profile.Preferences)
		assert.NotNil(t, profile.LastVisit)
	})

	t.Run("history recommendations", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/alice/recommendations?limit=3", "")
		require.Equal(t, http.StatusOK, w.Code)

		recs := decode[domain.Recommendations](t, w)
		assert.Equal(t, 4, recs.TotalActivities)
		assert.Equal(t, []string{"p_bread", "p_cheese", "p_milk"}, recs.RecentlyAdded)
		assert.Equal(t, []string{"p_almond_milk", "p_eggs", "p_croissant"}, ids(recs.Products))
	})

	t.Run("cart recommendations", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cart/alice/recommendations", "")
		require.Equal(t, http.StatusOK, w.Code)

		recs := decode[domain.CartRecommendations](t, w)
		assert.Equal(t, []string{"dairy", "bakery"}, recs.CartCategories)
		assert.Equal(t, []string{"dairy", "bakery"}, recs.FavoriteCategories)
		assert.Equal(t, []string{"p_almond_milk", "p_eggs", "p_croissant"}, ids(recs.Products))
	})

	t.Run("empty cart gets no recommendations", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cart/bob/recommendations", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[domain.CartRecommendations](t, w).Products)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/alice/recommendations?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("feedback", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/voice/feedback",
			`{"userName":"alice","transcript":"add chese","wasCorrect":false,"actualProductId":"p_cheese"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.Equal(t, "Thank you for your feedback!", body["message"])
		assert.NotEmpty(t, body["id"])

		w = s.do(t, http.MethodPost, "/api/v1/voice/feedback", `{"userName":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/voice/feedback",
			`{"userName":"alice","transcript":"add caviar","actualProductId":"p_caviar"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("clear history", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/users/alice/history", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.EqualValues(t, 4, body["deletedCount"])
		assert.Equal(t, "History cleared successfully", body["message"])

		w = s.do(t, http.MethodGet, "/api/v1/users/alice/profile", "")
		require.Equal(t, http.StatusOK, w.Code)
		profile := decode[domain.UserProfile](t, w)
		assert.True(t, profile.IsNewUser)
		assert.Equal(t, "Welcome! This is your first visit.", profile.Message)

		w = s.do(t, http.MethodGet, "/api/v1/cart/alice", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 4, decode[CartView](t, w).TotalItems)
	})
}

func TestCORSIntegration(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecoveryMiddleware(t *testing.T) {
	s := setupTestServer(t)
	s.router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := s.do(t, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAPIVersioning(t *testing.T) {
	s := setupTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/products", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products", "").Code)
}

func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/health", ""},
		{http.MethodPost, "/api/v1/voice/command", `{"text":"add milk","userName":"alice"}`},
		{http.MethodGet, "/api/v1/cart/alice", ""},
		{http.MethodGet, "/api/v1/products/p_nope", ""},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			s := setupTestServer(t)
			w := s.do(t, endpoint.method, endpoint.path, endpoint.body)

			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.True(t, json.Valid(w.Body.Bytes()), w.Body.String())
		})
	}
}
