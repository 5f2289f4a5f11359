package predict

import (
	"context"
	"time"

	"coinex_bot/internal/models"

	talib "github.com/markcheno/go-talib"
)

// TalibPredictor — референсная реализация порта: фичи считаются go-talib,
// прогноз — дрейф последней цены на величину MACD-гистограммы.
type TalibPredictor struct{}

func NewTalibPredictor() *TalibPredictor { return &TalibPredictor{} }

func (p *TalibPredictor) Predict(ctx context.Context, series models.MarketSeries, cfg FeatureConfig) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, ErrUnavailable
	}

	need := cfg.EMASlow
	for _, n := range []int{
		cfg.RSIPeriod + 1,
		cfg.MACDSlow + cfg.MACDSignal,
		cfg.BollingerPeriod,
		cfg.ATRPeriod + 1,
	} {
		if n > need {
			need = n
		}
	}
	if len(series) < need {
		return Snapshot{}, ErrUnavailable
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	last := len(closes) - 1

	rsi := talib.Rsi(closes, cfg.RSIPeriod)
	emaFast := talib.Ema(closes, cfg.EMAFast)
	emaSlow := talib.Ema(closes, cfg.EMASlow)
	_, _, macdHist := talib.Macd(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower := talib.BBands(closes, cfg.BollingerPeriod, 2, 2, talib.SMA)
	atr := talib.Atr(highs, lows, closes, cfg.ATRPeriod)

	price := closes[last]
	return Snapshot{
		PredictedPrice: price + macdHist[last],
		ATR:            atr[last],
		Features: map[string]float64{
			"rsi":       rsi[last],
			"ema_fast":  emaFast[last],
			"ema_slow":  emaSlow[last],
			"macd_hist": macdHist[last],
			"bb_upper":  bbUpper[last],
			"bb_middle": bbMiddle[last],
			"bb_lower":  bbLower[last],
			"atr":       atr[last],
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}
