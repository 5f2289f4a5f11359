package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"coinex_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Candles тянет OHLCV-окно и разбирает array-of-arrays в типизированный ряд.
// Нулевой/отсутствующий data — KindEmptyData: валидный ответ, но торговать
// по нему нельзя, пусть цикл попробует позже.
func (c *Client) Candles(ctx context.Context, market, interval string, limit int) (models.MarketSeries, error) {
	data, err := c.Execute(ctx, http.MethodGet, "market/kline", map[string]string{
		"market": market,
		"type":   interval,
		"limit":  strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}
	if emptyData(data) {
		return nil, &APIError{Kind: KindEmptyData, Msg: "market/kline: no data"}
	}

	var rows [][]any
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, &APIError{Kind: KindTransport, Msg: "decode kline", Err: err}
	}
	if len(rows) == 0 {
		return nil, &APIError{Kind: KindEmptyData, Msg: "market/kline: zero rows"}
	}

	series := make(models.MarketSeries, 0, len(rows))
	for _, row := range rows {
		// [time, open, close, high, low, volume, ...]
		if len(row) < 6 {
			return nil, &APIError{Kind: KindTransport, Msg: "kline row too short"}
		}
		ts, err := toFloat(row[0])
		if err != nil {
			return nil, &APIError{Kind: KindTransport, Msg: "kline timestamp", Err: err}
		}
		var vals [5]float64
		for j := 1; j <= 5; j++ {
			v, err := toFloat(row[j])
			if err != nil {
				return nil, &APIError{Kind: KindTransport, Msg: "kline field", Err: err}
			}
			vals[j-1] = v
		}
		series = append(series, models.Candle{
			At:     time.Unix(int64(ts), 0).UTC(),
			Open:   vals[0],
			Close:  vals[1],
			High:   vals[2],
			Low:    vals[3],
			Volume: vals[4],
		})
	}

	if err := series.Validate(); err != nil {
		return nil, errors.Wrap(err, "kline series")
	}
	return series, nil
}

// Balance возвращает available по валюте из balance/info.
func (c *Client) Balance(ctx context.Context, ccy string) (float64, error) {
	data, err := c.Execute(ctx, http.MethodGet, "balance/info", nil)
	if err != nil {
		return 0, err
	}
	if emptyData(data) {
		return 0, &APIError{Kind: KindEmptyData, Msg: "balance/info: no data"}
	}

	var wallets map[string]struct {
		Available string `json:"available"`
		Frozen    string `json:"frozen"`
	}
	if err := sonic.Unmarshal(data, &wallets); err != nil {
		return 0, &APIError{Kind: KindTransport, Msg: "decode balance", Err: err}
	}

	w, ok := wallets[ccy]
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseFloat(w.Available, 64)
	if err != nil {
		return 0, &APIError{Kind: KindTransport, Msg: "parse balance", Err: err}
	}
	return v, nil
}

func emptyData(data json.RawMessage) bool {
	s := string(data)
	return len(data) == 0 || s == "null" || s == "[]" || s == "{}"
}

// биржа отдаёт числа то строками, то числами — разбираем оба варианта
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case json.Number:
		return x.Float64()
	default:
		return 0, errors.Errorf("unexpected numeric type %T", v)
	}
}
