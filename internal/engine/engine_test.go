package engine

import (
	"testing"

	"github.com/fairbook/lobsim/internal/domain"
)

func TestDispatchOrderIsTimeThenSeq(t *testing.T) {
	var order []string

	var e *Engine
	e = New(func(ev *domain.Event) []*domain.Event {
		order = append(order, ev.AgentID)
		return nil
	})

	e.Schedule(&domain.Event{Time: 5, AgentID: "b", Type: domain.EventAgentArrival})
	e.Schedule(&domain.Event{Time: 5, AgentID: "a", Type: domain.EventAgentArrival})
	e.Schedule(&domain.Event{Time: 1, AgentID: "c", Type: domain.EventAgentArrival})

	e.Run()

	want := []string{"c", "b", "a"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestMarketCloseDiscardsRemainingQueue(t *testing.T) {
	var dispatched int
	e := New(func(ev *domain.Event) []*domain.Event {
		dispatched++
		return nil
	})

	e.Schedule(&domain.Event{Time: 1, Type: domain.EventAgentArrival})
	e.Schedule(&domain.Event{Time: 2, Type: domain.EventMarketClose})
	e.Schedule(&domain.Event{Time: 3, Type: domain.EventAgentArrival})

	e.Run()

	if dispatched != 1 {
		t.Fatalf("expected 1 dispatched event before close, got %d", dispatched)
	}
	if e.Running() {
		t.Fatal("expected engine to stop running after MarketCloseEvent")
	}
	if e.Pending() != 1 {
		t.Fatalf("expected the post-close event to remain undispatched and discarded on drain, got pending=%d", e.Pending())
	}
}

func TestHandlerCanScheduleMoreEvents(t *testing.T) {
	count := 0
	var e *Engine
	e = New(func(ev *domain.Event) []*domain.Event {
		count++
		if count < 5 {
			return []*domain.Event{{Time: ev.Time + 1, Type: domain.EventAgentArrival}}
		}
		return nil
	})
	e.Schedule(&domain.Event{Time: 0, Type: domain.EventAgentArrival})
	e.Run()
	if count != 5 {
		t.Fatalf("expected 5 dispatches, got %d", count)
	}
	if e.Time != 4 {
		t.Fatalf("expected final clock at 4, got %v", e.Time)
	}
}

func TestTimeRegressionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on time regression")
		}
	}()

	e := New(func(ev *domain.Event) []*domain.Event { return nil })
	e.Schedule(&domain.Event{Time: 5, Type: domain.EventAgentArrival})
	e.Run()
	// Schedule an event earlier than the clock the first Run reached to
	// simulate a programmer error; Schedule itself does not check this.
	e.Schedule(&domain.Event{Time: 1, Type: domain.EventAgentArrival})
	e.running = true
	e.Run()
}
