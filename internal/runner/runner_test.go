package runner

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"coinex_bot/internal/engine"
	"coinex_bot/internal/exchange"
	"coinex_bot/internal/journal"
	"coinex_bot/internal/models"
	"coinex_bot/internal/modules/config"
	"coinex_bot/internal/predict"
	"coinex_bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.InfoLogger = zap.NewNop()
	logger.FatalLogger = zap.NewNop()
}

type fakeMarket struct {
	series     models.MarketSeries
	candlesErr error

	balance       float64
	balanceErr    error
	balanceCalled bool
}

func (f *fakeMarket) Candles(context.Context, string, string, int) (models.MarketSeries, error) {
	if f.candlesErr != nil {
		return nil, f.candlesErr
	}
	return f.series, nil
}

func (f *fakeMarket) Balance(context.Context, string) (float64, error) {
	f.balanceCalled = true
	return f.balance, f.balanceErr
}

func (f *fakeMarket) LastPrice(string) float64 { return 0 }

func (f *fakeMarket) StreamTicker(context.Context, string) <-chan float64 {
	ch := make(chan float64)
	close(ch)
	return ch
}

type recExec struct{ sides []models.Side }

func (r *recExec) SubmitLimit(_ context.Context, _ string, side models.Side, _, price float64) models.OrderResult {
	r.sides = append(r.sides, side)
	return models.OrderResult{Accepted: true, FilledPrice: price}
}

type memNotifier struct{ msgs []string }

func (n *memNotifier) Send(msg string)             { n.msgs = append(n.msgs, msg) }
func (n *memNotifier) Sendf(f string, args ...any) { n.Send(fmt.Sprintf(f, args...)) }
func (n *memNotifier) SendImage(name string, data []byte, caption string) {
	n.Send("image:" + name)
}

func (n *memNotifier) containing(substr string) bool {
	for _, m := range n.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Cadence:        300 * time.Second,
		EmptyCooldown:  60 * time.Second,
		PredictTimeout: time.Second,
	}
	cfg.Trading.Market = "BTCUSDT"
	cfg.Trading.BalanceCcy = "USDT"
	cfg.Trading.Interval = "5min"
	cfg.Trading.CandleLimit = 50
	cfg.Trading.TotalCapital = 10000
	cfg.Trading.RiskFraction = 0.01
	// маленькие окна, чтобы хватало короткого ряда
	cfg.Features = predict.FeatureConfig{
		RSIPeriod:       3,
		EMAFast:         3,
		EMASlow:         5,
		MACDFast:        3,
		MACDSlow:        5,
		MACDSignal:      2,
		BollingerPeriod: 3,
		ATRPeriod:       3,
	}
	return cfg
}

// ряд из n свечей, сходящийся к last
func seriesEndingAt(n int, last float64) models.MarketSeries {
	series := make(models.MarketSeries, 0, n)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := last + float64(n-1-i)*0.1
		series = append(series, models.Candle{
			At:     start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c + 0.05,
			High:   c + 0.2,
			Low:    c - 0.2,
			Close:  c,
			Volume: 1,
		})
	}
	return series
}

func newTestRunner(cfg *config.Config, ex MarketData, exec engine.Submitter, n *memNotifier) *Runner {
	eng := engine.New(cfg.Trading.Market,
		models.RiskConfig{TotalCapital: cfg.Trading.TotalCapital, RiskFraction: cfg.Trading.RiskFraction},
		models.LevelLadder{Buy: cfg.Trading.BuyLevels, Sell: cfg.Trading.SellLevels},
		exec, n, journal.NewNoop())
	return New(cfg, ex, eng, predict.NewTalibPredictor(), n)
}

func TestCycleEmptyDataCooldown(t *testing.T) {
	cfg := testConfig()
	ex := &fakeMarket{candlesErr: &exchange.APIError{Kind: exchange.KindEmptyData, Msg: "no data"}}
	exec := &recExec{}
	n := &memNotifier{}
	r := newTestRunner(cfg, ex, exec, n)

	wait := r.cycle(context.Background())

	assert.Equal(t, cfg.EmptyCooldown, wait)
	assert.Empty(t, exec.sides)
	assert.False(t, ex.balanceCalled)
	assert.True(t, n.containing("пустые свечи"))
}

func TestCycleTransportErrorCooldown(t *testing.T) {
	cfg := testConfig()
	ex := &fakeMarket{candlesErr: &exchange.APIError{Kind: exchange.KindExhausted, Msg: "market/kline"}}
	exec := &recExec{}
	r := newTestRunner(cfg, ex, exec, &memNotifier{})

	wait := r.cycle(context.Background())

	assert.Equal(t, cfg.EmptyCooldown, wait)
	assert.Empty(t, exec.sides)
}

func TestCycleOpensPositionAndNotifies(t *testing.T) {
	cfg := testConfig()
	cfg.Trading.BuyLevels = []float64{10}

	ex := &fakeMarket{series: seriesEndingAt(30, 9), balance: 1000}
	exec := &recExec{}
	n := &memNotifier{}
	r := newTestRunner(cfg, ex, exec, n)

	wait := r.cycle(context.Background())

	assert.Equal(t, cfg.Cadence, wait)
	require.Len(t, exec.sides, 1)
	assert.Equal(t, models.SideBuy, exec.sides[0])
	assert.True(t, ex.balanceCalled)
	assert.True(t, n.containing("прогноз"))
	assert.True(t, n.containing("image:"))
}

func TestCyclePredictionUnavailableSkipsEvaluation(t *testing.T) {
	cfg := testConfig()
	cfg.Trading.BuyLevels = []float64{10}

	// ряда не хватает даже на маленькие окна
	ex := &fakeMarket{series: seriesEndingAt(3, 9), balance: 1000}
	exec := &recExec{}
	n := &memNotifier{}
	r := newTestRunner(cfg, ex, exec, n)

	wait := r.cycle(context.Background())

	assert.Equal(t, cfg.Cadence, wait)
	assert.Empty(t, exec.sides)
	assert.False(t, ex.balanceCalled)
}

func TestCycleBalanceErrorSkipsEvaluation(t *testing.T) {
	cfg := testConfig()
	cfg.Trading.BuyLevels = []float64{10}

	ex := &fakeMarket{
		series:     seriesEndingAt(30, 9),
		balanceErr: &exchange.APIError{Kind: exchange.KindRemote, Code: 25, Msg: "auth"},
	}
	exec := &recExec{}
	n := &memNotifier{}
	r := newTestRunner(cfg, ex, exec, n)

	wait := r.cycle(context.Background())

	assert.Equal(t, cfg.Cadence, wait)
	assert.Empty(t, exec.sides)
	// прогноз и артефакт всё равно ушли
	assert.True(t, n.containing("прогноз"))
}
