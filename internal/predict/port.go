package predict

import (
	"context"
	"errors"
	"time"

	"coinex_bot/internal/models"
)

// ErrUnavailable — прогноза в этом цикле нет; цикл пропускает торговую
// оценку, позиция не трогается.
var ErrUnavailable = errors.New("prediction unavailable")

// FeatureConfig перечисляет окна индикаторов, по которым строятся фичи.
type FeatureConfig struct {
	RSIPeriod       int `yaml:"rsi_period"`
	EMAFast         int `yaml:"ema_fast"`
	EMASlow         int `yaml:"ema_slow"`
	MACDFast        int `yaml:"macd_fast"`
	MACDSlow        int `yaml:"macd_slow"`
	MACDSignal      int `yaml:"macd_signal"`
	BollingerPeriod int `yaml:"bollinger_period"`
	ATRPeriod       int `yaml:"atr_period"`
}

func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		RSIPeriod:       14,
		EMAFast:         50,
		EMASlow:         200,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		ATRPeriod:       14,
	}
}

// Snapshot — сигнал одного цикла: прогноз цены + фичи, включая ATR,
// который нужен движку для стопов и сайзинга.
type Snapshot struct {
	PredictedPrice float64
	ATR            float64
	Features       map[string]float64
	GeneratedAt    time.Time
}

// Port — контракт внешнего предиктора. Реальная модель подставляется
// вместо референсной реализации без изменений в цикле.
type Port interface {
	Predict(ctx context.Context, series models.MarketSeries, cfg FeatureConfig) (Snapshot, error)
}
