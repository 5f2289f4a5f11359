package chart

import (
	"bytes"

	"coinex_bot/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Render строит kline-график окна свечей с отметкой предсказанной цены.
// Возвращает готовый HTML-снапшот — его нотифайер отправляет документом.
func Render(market string, series models.MarketSeries, predicted float64) ([]byte, error) {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: market}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, 0, len(series))
	y := make([]opts.KlineData, 0, len(series))
	for _, c := range series {
		x = append(x, c.At.Format("01-02 15:04"))
		y = append(y, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}

	kline.SetXAxis(x).AddSeries("kline", y)
	if predicted > 0 {
		kline.SetSeriesOptions(
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name:  "predicted",
				YAxis: predicted,
			}),
		)
	}

	var buf bytes.Buffer
	if err := kline.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
