package risk

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotionalExceed = errors.New("single order notional exceed")
	ErrQtyExceed      = errors.New("single order quantity exceed")
)

// Guard validates an order intent before it is handed to the execution
// collaborator. Guards compose; any error aborts the submit.
type Guard interface {
	PreOrder(price, qty float64) error
}

// MultiGuard runs guards in order and stops at the first failure.
type MultiGuard struct {
	Guards []Guard
}

func (m MultiGuard) PreOrder(price, qty float64) error {
	for _, g := range m.Guards {
		if g == nil {
			continue
		}
		if err := g.PreOrder(price, qty); err != nil {
			return err
		}
	}
	return nil
}

// NotionalGuard caps the value of any single order.
type NotionalGuard struct {
	MaxNotional float64
	MaxQty      float64
}

func (g NotionalGuard) PreOrder(price, qty float64) error {
	q := math.Abs(qty)
	if g.MaxQty > 0 && q > g.MaxQty {
		return fmt.Errorf("%w: qty %.8f > %.8f", ErrQtyExceed, q, g.MaxQty)
	}
	if g.MaxNotional > 0 && price*q > g.MaxNotional {
		return fmt.Errorf("%w: notional %.2f > %.2f", ErrNotionalExceed, price*q, g.MaxNotional)
	}
	return nil
}
