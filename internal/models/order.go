package models

// Side — сторона ордера.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderResult — исход отправки лимитного ордера.
// FilledPrice заполнен только при Accepted, Err — только при отказе.
type OrderResult struct {
	Accepted    bool
	OrderID     string
	FilledPrice float64
	Err         error
}
