package exchange

import (
	"errors"
	"fmt"
)

// ErrorKind — классификация ошибок API (см. политику ретраев в client.go).
type ErrorKind int

const (
	// KindTransport — сеть/парсинг, ретраится.
	KindTransport ErrorKind = iota + 1
	// KindRemote — ошибка, которую вернула сама биржа; не ретраится.
	KindRemote
	// KindEmptyData — валидный ответ без данных, "попробуй в следующем цикле".
	KindEmptyData
	// KindExhausted — ретраи закончились, внутри последняя причина.
	KindExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindEmptyData:
		return "empty_data"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

type APIError struct {
	Kind ErrorKind
	Code int
	Msg  string
	Err  error
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == KindRemote:
		return fmt.Sprintf("api %s: code=%d msg=%s", e.Kind, e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("api %s: %s: %v", e.Kind, e.Msg, e.Err)
	default:
		return fmt.Sprintf("api %s: %s", e.Kind, e.Msg)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

func kindIs(err error, k ErrorKind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == k
}

func IsTransport(err error) bool { return kindIs(err, KindTransport) }
func IsRemote(err error) bool    { return kindIs(err, KindRemote) }
func IsEmptyData(err error) bool { return kindIs(err, KindEmptyData) }
func IsExhausted(err error) bool { return kindIs(err, KindExhausted) }
