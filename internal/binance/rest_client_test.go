package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"binance-ledger-go/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	client := resty.New().SetBaseURL(server.URL)
	logger := zap.NewNop() // Use a no-op logger for tests

	rc := &RestClient{
		client:    client,
		apiKey:    "test_api_key",
		secretKey: "test_secret_key",
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return rc, server
}

func TestGetServerTime(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		expectedTime := time.Now().UnixMilli()
		mockResponse := fmt.Sprintf(`{"serverTime": %d}`, expectedTime)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/time", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		serverTime, err := rc.GetServerTime()

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, expectedTime, serverTime)
	})

	t.Run("APIError", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/time", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code": -1001, "msg": "Internal error"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		serverTime, err := rc.GetServerTime()

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get server time")
		assert.Contains(t, err.Error(), "request failed") // Check for the error from doRequest
		assert.Equal(t, int64(0), serverTime)
	})
}

func TestGetMyTrades(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockResponse := `[
			{"symbol": "BTCUSDT", "id": 28457, "orderId": 100234, "price": "50000",
			 "qty": "0.01", "quoteQty": "500", "commission": "0.5",
			 "commissionAsset": "USDT", "time": 1700000000000, "isBuyer": true, "isMaker": false}
		]`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/myTrades", r.URL.Path)
			assert.Equal(t, "test_api_key", r.Header.Get("X-MBX-APIKEY"))

			q := r.URL.Query()
			assert.Equal(t, "BTCUSDT", q.Get("symbol"))
			assert.Equal(t, "1700000000000", q.Get("startTime"))
			assert.Equal(t, "1000", q.Get("limit"))
			assert.NotEmpty(t, q.Get("timestamp"))
			assert.NotEmpty(t, q.Get("signature"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		trades, err := rc.GetMyTrades(context.Background(), "BTCUSDT", 1700000000000, 1000)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, trades, 1)
		assert.Equal(t, int64(100234), trades[0].OrderID)
		assert.Equal(t, "0.5", trades[0].Commission)
		assert.True(t, trades[0].IsBuyer)
	})

	t.Run("OmitsOptionalParams", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.False(t, q.Has("symbol"))
			assert.False(t, q.Has("startTime"))
			assert.Equal(t, "500", q.Get("limit"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		trades, err := rc.GetMyTrades(context.Background(), "", 0, 500)

		// Assert
		assert.NoError(t, err)
		assert.Empty(t, trades)
	})

	t.Run("ExchangeErrorPassthrough", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code": -2014, "msg": "API-key format invalid."}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		trades, err := rc.GetMyTrades(context.Background(), "BTCUSDT", 0, 1000)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, trades)

		var apiErr *APIError
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, -2014, apiErr.Code)
		assert.Equal(t, "API-key format invalid.", apiErr.Message)
	})
}

func TestConfigured(t *testing.T) {
	logger := zap.NewNop()

	rc := NewRestClient(&config.Binance{ApiKey: "k", SecretKey: "s"}, logger)
	assert.True(t, rc.Configured())

	rc = NewRestClient(&config.Binance{ApiKey: "k"}, logger)
	assert.False(t, rc.Configured())

	rc = NewRestClient(&config.Binance{}, logger)
	assert.False(t, rc.Configured())
}

func TestNewRestClient(t *testing.T) {
	t.Run("Testnet", func(t *testing.T) {
		cfg := &config.Binance{Testnet: true}
		logger := zap.NewNop()
		rc := NewRestClient(cfg, logger)
		assert.NotNil(t, rc)
		// Resty doesn't publicly expose the base URL after setting it,
		// so we can't directly assert it. However, we can infer it's correct
		// by ensuring the client object is created. A more advanced test could
		// involve making a request and inspecting the URL.
		assert.Equal(t, cfg.ApiKey, rc.apiKey)
		assert.Equal(t, cfg.SecretKey, rc.secretKey)
	})

	t.Run("Production", func(t *testing.T) {
		cfg := &config.Binance{Testnet: false}
		logger := zap.NewNop()
		rc := NewRestClient(cfg, logger)
		assert.NotNil(t, rc)
		assert.Equal(t, cfg.ApiKey, rc.apiKey)
		assert.Equal(t, cfg.SecretKey, rc.secretKey)
	})
}
