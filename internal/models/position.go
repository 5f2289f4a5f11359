package models

import "time"

// Position — единственная открытая позиция движка.
// Создаётся только успешной покупкой, снимается только успешной продажей.
// SL/TP фиксируются в момент входа и дальше не пересчитываются.
type Position struct {
	Entry      float64
	Size       float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
}

// UnrealizedPnL по текущей цене.
func (p Position) UnrealizedPnL(price float64) float64 {
	return (price - p.Entry) * p.Size
}

// RiskConfig — бюджет риска, читается один раз на старте.
type RiskConfig struct {
	TotalCapital float64
	RiskFraction float64
}

// LevelLadder — статические уровни входа/выхода.
// Buy отсортированы по возрастанию (приоритет обхода), Sell тоже.
type LevelLadder struct {
	Buy  []float64
	Sell []float64
}
