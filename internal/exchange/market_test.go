package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func klineServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func TestCandlesParsesRows(t *testing.T) {
	srv := klineServer(t, `{"code":0,"message":"Ok","data":[
		[1700000000,"100.5","101.0","102.0","99.0","12.5","1260"],
		[1700000300,"101.0","100.0","101.5","99.5","8.25","830"]
	]}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	series, err := c.Candles(context.Background(), "BTCUSDT", "5min", 2)
	require.NoError(t, err)
	require.Len(t, series, 2)

	first := series[0]
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), first.At)
	assert.Equal(t, 100.5, first.Open)
	assert.Equal(t, 101.0, first.Close)
	assert.Equal(t, 102.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 12.5, first.Volume)

	assert.True(t, series[0].At.Before(series[1].At))
	assert.Equal(t, 100.0, series.LastClose())
}

func TestCandlesNumericRows(t *testing.T) {
	// некоторые эндпоинты отдают числа числами, а не строками
	srv := klineServer(t, `{"code":0,"message":"Ok","data":[[1700000000,100.5,101,102,99,12.5,1260]]}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	series, err := c.Candles(context.Background(), "BTCUSDT", "5min", 1)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 101.0, series[0].Close)
}

func TestCandlesEmptyRowsIsEmptyData(t *testing.T) {
	srv := klineServer(t, `{"code":0,"message":"Ok","data":[]}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Candles(context.Background(), "BTCUSDT", "5min", 10)
	require.Error(t, err)
	assert.True(t, IsEmptyData(err))
	assert.False(t, IsTransport(err))
}

func TestCandlesMissingDataIsEmptyData(t *testing.T) {
	srv := klineServer(t, `{"code":0,"message":"Ok"}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Candles(context.Background(), "BTCUSDT", "5min", 10)
	require.Error(t, err)
	assert.True(t, IsEmptyData(err))
}

func TestCandlesNonMonotonicRejected(t *testing.T) {
	srv := klineServer(t, `{"code":0,"message":"Ok","data":[
		[1700000300,"1","1","1","1","1","1"],
		[1700000000,"1","1","1","1","1","1"]
	]}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Candles(context.Background(), "BTCUSDT", "5min", 2)
	require.Error(t, err)
}

func TestBalanceParsesAvailable(t *testing.T) {
	srv := klineServer(t, `{"code":0,"message":"Ok","data":{"USDT":{"available":"1234.56","frozen":"0"},"BTC":{"available":"0.5","frozen":"0"}}}`)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	bal, err := c.Balance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, bal)

	// неизвестная валюта — просто ноль, не ошибка
	bal, err = c.Balance(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Zero(t, bal)
}
