package monitor

import "testing"

func TestPublisherDeliversToSubscribers(t *testing.T) {
	p := NewPublisher()
	a := p.Subscribe()
	b := p.Subscribe()

	p.Publish(TickStats{FairPrice: 100})

	for _, ch := range []<-chan TickStats{a, b} {
		select {
		case s := <-ch:
			if s.FairPrice != 100 {
				t.Errorf("FairPrice = %v, want 100", s.FairPrice)
			}
		default:
			t.Error("subscriber missed the update")
		}
	}
}

func TestPublishNeverBlocksOnSlowConsumer(t *testing.T) {
	p := NewPublisher()
	ch := p.Subscribe()

	// Overrun the buffer; Publish must keep returning.
	for i := 0; i < 100; i++ {
		p.Publish(TickStats{Timestamp: int64(i)})
	}

	// The buffered prefix is retained, the rest was dropped.
	got := 0
	for {
		select {
		case <-ch:
			got++
			continue
		default:
		}
		break
	}
	if got == 0 || got >= 100 {
		t.Errorf("received %d updates, want a dropped tail", got)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	p := NewPublisher()
	// Must not panic or block.
	p.Publish(TickStats{})
}
