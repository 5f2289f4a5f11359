package models

import (
	"fmt"
	"math"
	"time"
)

// Candle — одна OHLCV-свеча, неизменяемая после парсинга.
type Candle struct {
	At     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketSeries — свечи от старых к новым.
type MarketSeries []Candle

// Validate проверяет инварианты ряда: строго возрастающие таймстемпы,
// неотрицательные и конечные цены/объёмы.
func (s MarketSeries) Validate() error {
	for i, c := range s {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("candle %d: bad value %v", i, v)
			}
		}
		if i > 0 && !s[i-1].At.Before(c.At) {
			return fmt.Errorf("candle %d: timestamp %s not after %s", i, c.At, s[i-1].At)
		}
	}
	return nil
}

func (s MarketSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

func (s MarketSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

func (s MarketSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

func (s MarketSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}
