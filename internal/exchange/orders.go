package exchange

import (
	"context"
	"net/http"
	"strconv"

	"coinex_bot/internal/models"

	"github.com/bytedance/sonic"
)

// SubmitLimit — чистая трансляция решения движка в подписанный лимитный
// ордер. Своих ретраев нет, только политика клиента; APIError уезжает
// в OrderResult.Err, решает дальше движок.
func (c *Client) SubmitLimit(ctx context.Context, market string, side models.Side, amount, price float64) models.OrderResult {
	data, err := c.Execute(ctx, http.MethodPost, "order/limit", map[string]string{
		"market": market,
		"type":   string(side),
		"amount": formatAmount(amount),
		"price":  formatAmount(price),
	})
	if err != nil {
		return models.OrderResult{Err: err}
	}

	var r struct {
		ID          int64  `json:"id"`
		Price       string `json:"price"`
		AvgPrice    string `json:"avg_price"`
		DealAmount  string `json:"deal_amount"`
		OrderStatus string `json:"status"`
	}
	filled := price
	orderID := ""
	if err := sonic.Unmarshal(data, &r); err == nil {
		orderID = strconv.FormatInt(r.ID, 10)
		if px, perr := strconv.ParseFloat(r.AvgPrice, 64); perr == nil && px > 0 {
			filled = px
		} else if px, perr := strconv.ParseFloat(r.Price, 64); perr == nil && px > 0 {
			filled = px
		}
	}

	return models.OrderResult{
		Accepted:    true,
		OrderID:     orderID,
		FilledPrice: filled,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
