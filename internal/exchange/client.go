package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	defaultBaseURL = "https://api.coinex.com/v1"
	defaultWSURL   = "wss://socket.coinex.com/"

	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
)

// Notifier — внешний сток уведомлений; клиент шлёт туда терминальные ошибки
// fire-and-forget, падения стока глотаются внутри самого нотифайера.
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

type Client struct {
	http     *http.Client
	wsDialer *websocket.Dialer
	baseURL  string
	wsURL    string

	accessID string
	secret   string
	n        Notifier

	tonceMu   sync.Mutex
	lastTonce int64

	// кэш последних цен из WS (ws.go)
	priceMu sync.RWMutex
	prices  map[string]float64

	// подменяется в тестах
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(accessID, secret string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		wsDialer: &websocket.Dialer{},
		baseURL:  defaultBaseURL,
		wsURL:    defaultWSURL,
		accessID: accessID,
		secret:   secret,
		prices:   make(map[string]float64),
		sleep:    sleepCtx,
	}
}

func (c *Client) SetNotifier(n Notifier) { c.n = n }
func (c *Client) SetBaseURL(u string)    { c.baseURL = strings.TrimRight(u, "/") }
func (c *Client) SetWSURL(u string)      { c.wsURL = u }

// tonce — строго возрастающие миллисекунды, защита от replay подписи.
func (c *Client) tonce() int64 {
	c.tonceMu.Lock()
	defer c.tonceMu.Unlock()
	t := time.Now().UnixMilli()
	if t <= c.lastTonce {
		t = c.lastTonce + 1
	}
	c.lastTonce = t
	return t
}

// canonical — ключи лексикографически, key=value через '&'.
func canonical(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

func sign(params map[string]string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(canonical(params)))
	return hex.EncodeToString(h.Sum(nil))
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Execute выполняет подписанный запрос с ретраями транспортных ошибок.
// Remote-ошибки биржи авторитетны и не ретраятся. Возвращает сырое поле data.
func (c *Client) Execute(ctx context.Context, method, endpoint string, params map[string]string) (json.RawMessage, error) {
	var last error
	delay := baseBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := c.do(ctx, method, endpoint, params)
		if err == nil {
			return data, nil
		}
		if IsRemote(err) {
			c.report(endpoint, err)
			return nil, err
		}
		last = err
		if attempt == maxAttempts {
			break
		}
		if serr := c.sleep(ctx, delay); serr != nil {
			last = serr
			break
		}
		delay *= 2
	}

	err := &APIError{Kind: KindExhausted, Msg: endpoint, Err: last}
	c.report(endpoint, err)
	return nil, err
}

// do — одна попытка: свежие tonce и подпись на каждый заход.
func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string) (json.RawMessage, error) {
	signed := make(map[string]string, len(params)+3)
	for k, v := range params {
		signed[k] = v
	}
	signed["access_id"] = c.accessID
	signed["tonce"] = strconv.FormatInt(c.tonce(), 10)
	signed["signature"] = sign(signed, c.secret)

	q := url.Values{}
	for k, v := range signed {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Msg: "build request", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Msg: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Msg: "read body", Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return nil, &APIError{Kind: KindRemote, Code: resp.StatusCode, Msg: strings.TrimSpace(string(body))}
	}

	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Kind: KindTransport, Msg: "decode body", Err: err}
	}
	if env.Code != 0 {
		return nil, &APIError{Kind: KindRemote, Code: env.Code, Msg: env.Message}
	}
	return env.Data, nil
}

func (c *Client) report(endpoint string, err error) {
	if c.n == nil {
		return
	}
	c.n.Sendf("❗️ API %s: %v", endpoint, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
