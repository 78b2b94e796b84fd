package realtime

import "testing"

func TestPublishReachesOwnSubscriberOnly(t *testing.T) {
	hub := NewHub()

	mine, cancelMine := hub.Subscribe("u1")
	defer cancelMine()
	theirs, cancelTheirs := hub.Subscribe("u2")
	defer cancelTheirs()

	hub.Publish("u1", Event{Table: "tasks", Action: "INSERT"})

	select {
	case ev := <-mine:
		if ev.Table != "tasks" || ev.Action != "INSERT" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("subscriber did not receive event")
	}

	select {
	case ev := <-theirs:
		t.Fatalf("foreign subscriber received %+v", ev)
	default:
	}
}

func TestBurstCoalescesIntoOnePendingEvent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	for i := 0; i < 10; i++ {
		hub.Publish("u1", Event{Table: "tasks", Action: "UPDATE"})
	}

	got := 0
	for {
		select {
		case <-ch:
			got++
		default:
			if got != 1 {
				t.Fatalf("pending events = %d, want 1", got)
			}
			return
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	cancel()

	hub.Publish("u1", Event{Table: "tasks", Action: "DELETE"})

	select {
	case ev := <-ch:
		t.Fatalf("cancelled subscriber received %+v", ev)
	default:
	}
}

func TestBroadcastAllReachesEveryUser(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe("u1")
	defer cancelA()
	b, cancelB := hub.Subscribe("u2")
	defer cancelB()

	hub.BroadcastAll(Event{Table: "tasks", Action: "REFRESH"})

	for name, ch := range map[string]<-chan Event{"u1": a, "u2": b} {
		select {
		case <-ch:
		default:
			t.Errorf("subscriber %s missed broadcast", name)
		}
	}
}
