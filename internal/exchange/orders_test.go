package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"coinex_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLimitAccepted(t *testing.T) {
	var seen url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		_, _ = w.Write([]byte(`{"code":0,"message":"Ok","data":{"id":42,"price":"9","avg_price":"8.99","status":"done"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.SubmitLimit(context.Background(), "BTCUSDT", models.SideBuy, 50, 9)

	require.True(t, res.Accepted)
	require.NoError(t, res.Err)
	assert.Equal(t, "42", res.OrderID)
	assert.Equal(t, 8.99, res.FilledPrice)

	assert.Equal(t, "BTCUSDT", seen.Get("market"))
	assert.Equal(t, "buy", seen.Get("type"))
	assert.Equal(t, "50", seen.Get("amount"))
	assert.Equal(t, "9", seen.Get("price"))
}

func TestSubmitLimitRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":107,"message":"balance not enough","data":null}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.SubmitLimit(context.Background(), "BTCUSDT", models.SideSell, 1, 100)

	assert.False(t, res.Accepted)
	require.Error(t, res.Err)
	assert.True(t, IsRemote(res.Err))
	assert.Zero(t, res.FilledPrice)
}

func TestSubmitLimitFallsBackToSubmittedPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"message":"Ok","data":{"id":7}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.SubmitLimit(context.Background(), "BTCUSDT", models.SideBuy, 2, 123.45)

	require.True(t, res.Accepted)
	assert.Equal(t, 123.45, res.FilledPrice)
}
