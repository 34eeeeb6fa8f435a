package sim

import (
	"errors"
	"testing"

	"mm-engine-go/market"
	"mm-engine-go/order"
	"mm-engine-go/risk"
)

func book(bid, ask float64) market.Snapshot {
	return market.Snapshot{
		Bids: []market.Level{{Price: bid, Qty: 10}},
		Asks: []market.Level{{Price: ask, Qty: 10}},
	}
}

func TestVenueRejectsBadOrders(t *testing.T) {
	v := NewVenue(nil)

	if err := v.Submit(1, order.Bid, 0, 1); !errors.Is(err, ErrOrderRejected) {
		t.Errorf("zero price: err = %v, want ErrOrderRejected", err)
	}
	if err := v.Submit(1, order.Bid, 100, -1); !errors.Is(err, ErrOrderRejected) {
		t.Errorf("negative qty: err = %v, want ErrOrderRejected", err)
	}
	if err := v.Submit(1, order.Bid, 100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Submit(1, order.Ask, 101, 1); !errors.Is(err, ErrOrderRejected) {
		t.Errorf("duplicate id: err = %v, want ErrOrderRejected", err)
	}
}

func TestVenueGuardRejection(t *testing.T) {
	v := NewVenue(risk.NotionalGuard{MaxNotional: 50})

	if err := v.Submit(1, order.Bid, 100, 1); !errors.Is(err, ErrOrderRejected) {
		t.Errorf("err = %v, want ErrOrderRejected from guard", err)
	}
	if v.Resting() != 0 {
		t.Error("rejected order must not rest")
	}
}

func TestVenueCancel(t *testing.T) {
	v := NewVenue(nil)
	if err := v.Submit(1, order.Bid, 100, 1); err != nil {
		t.Fatal(err)
	}
	if err := v.Cancel(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Cancel(1); !errors.Is(err, order.ErrUnknownOrder) {
		t.Errorf("double cancel: err = %v, want ErrUnknownOrder", err)
	}
}

func TestVenueMatchCrossingOnly(t *testing.T) {
	v := NewVenue(nil)
	_ = v.Submit(1, order.Bid, 99, 1)    // below the market
	_ = v.Submit(2, order.Ask, 101, 1)   // above the market
	_ = v.Submit(3, order.Bid, 100.5, 2) // crossed by the ask at 100.4

	var fills []uint64
	v.Match(book(100, 100.4), func(id uint64, qty, price float64) {
		fills = append(fills, id)
		if id == 3 {
			if qty != 2 || price != 100.5 {
				t.Errorf("fill = %v@%v, want 2@100.5", qty, price)
			}
		}
	})

	if len(fills) != 1 || fills[0] != 3 {
		t.Fatalf("fills = %v, want [3]", fills)
	}
	if v.Resting() != 2 {
		t.Errorf("Resting = %d, want 2", v.Resting())
	}
}

func TestVenueMatchAskSide(t *testing.T) {
	v := NewVenue(nil)
	_ = v.Submit(1, order.Ask, 100.2, 1)

	filled := false
	v.Match(book(100.3, 100.6), func(id uint64, qty, price float64) {
		filled = true
		if price != 100.2 {
			t.Errorf("fill price = %v, want resting limit 100.2", price)
		}
	})
	if !filled {
		t.Fatal("ask not filled when best bid crossed it")
	}
}

func TestVenueMatchOneSidedBook(t *testing.T) {
	v := NewVenue(nil)
	_ = v.Submit(1, order.Bid, 100, 1)

	v.Match(market.Snapshot{Bids: []market.Level{{Price: 99, Qty: 1}}}, func(uint64, float64, float64) {
		t.Fatal("no asks, nothing can fill a bid")
	})
	if v.Resting() != 1 {
		t.Error("order must keep resting")
	}
}
