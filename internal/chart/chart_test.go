package chart

import (
	"testing"
	"time"

	"coinex_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesHTML(t *testing.T) {
	series := models.MarketSeries{
		{At: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Open: 9, High: 10, Low: 8.5, Close: 9.5, Volume: 1},
		{At: time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC), Open: 9.5, High: 10.2, Low: 9.1, Close: 10, Volume: 2},
	}

	html, err := Render("BTCUSDT", series, 10.5)
	require.NoError(t, err)
	assert.NotEmpty(t, html)
	assert.Contains(t, string(html), "BTCUSDT")
}

func TestRenderWithoutPrediction(t *testing.T) {
	series := models.MarketSeries{
		{At: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Open: 9, High: 10, Low: 8.5, Close: 9.5, Volume: 1},
	}

	html, err := Render("ETHUSDT", series, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, html)
}
