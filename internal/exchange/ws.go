package exchange

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"
)

func (c *Client) SetPrice(market string, price float64) {
	c.priceMu.Lock()
	c.prices[market] = price
	c.priceMu.Unlock()
}

func (c *Client) LastPrice(market string) float64 {
	c.priceMu.RLock()
	defer c.priceMu.RUnlock()
	return c.prices[market]
}

// StreamTicker — фоновый поток последних цен по рынку. Питает только кэш
// цен и health-отчёт; торговый цикл остаётся на REST и один поток.
func (c *Client) StreamTicker(ctx context.Context, market string) <-chan float64 {
	ch := make(chan float64)
	go func() {
		defer close(ch)
		retry := 0
		for {
			conn, _, err := c.wsDialer.Dial(c.wsURL, nil)
			if err != nil {
				retry++
				if retry > 8 {
					log.Printf("[WS] %s — не удалось подключиться, сдаёмся", market)
					return
				}
				time.Sleep(time.Duration(300*retry) * time.Millisecond)
				continue
			}
			retry = 0
			_ = conn.WriteJSON(map[string]any{
				"method": "state.subscribe",
				"params": []string{market},
				"id":     1,
			})

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(15 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-stopPing:
						return
					case <-ctx.Done():
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]any{"method": "server.ping", "params": []string{}, "id": 2})
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					close(stopPing)
					_ = conn.Close()
					break
				}
				var frame struct {
					Method string            `json:"method"`
					Params []json.RawMessage `json:"params"`
				}
				if err := json.Unmarshal(msg, &frame); err != nil || frame.Method != "state.update" || len(frame.Params) == 0 {
					continue
				}
				var states map[string]struct {
					Last string `json:"last"`
				}
				if err := json.Unmarshal(frame.Params[0], &states); err != nil {
					continue
				}
				st, ok := states[market]
				if !ok {
					continue
				}
				last, err := strconv.ParseFloat(st.Last, 64)
				if err != nil || last == 0 {
					continue
				}
				c.SetPrice(market, last)
				select {
				case ch <- last:
				case <-ctx.Done():
					_ = conn.Close()
					return
				default:
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(1 * time.Second)
			}
		}
	}()
	return ch
}
