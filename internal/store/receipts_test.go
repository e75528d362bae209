package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceiptRegistryNotifyWakesWaiter(t *testing.T) {
	r := NewReceiptRegistry()
	w := r.Register([]Key{"a", "b"})

	select {
	case <-w.Done():
		t.Fatal("waiter woke before Notify")
	case <-time.After(10 * time.Millisecond):
	}

	r.Notify("b")
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after Notify")
	}
	r.Cancel([]Key{"a", "b"}, w)
}

func TestReceiptRegistryCancelRemovesWaiter(t *testing.T) {
	r := NewReceiptRegistry()
	w := r.Register([]Key{"a"})
	r.Cancel([]Key{"a"}, w)
	// Notify after cancellation must not panic and must not affect
	// anything — there is nothing left registered for "a".
	r.Notify("a")
}

func TestReceiptRegistryMultipleWaitersAllWake(t *testing.T) {
	r := NewReceiptRegistry()
	w1 := r.Register([]Key{"k"})
	w2 := r.Register([]Key{"k"})
	r.Notify("k")
	for _, w := range []*Waiter{w1, w2} {
		select {
		case <-w.Done():
		case <-time.After(time.Second):
			t.Fatal("a waiter did not wake")
		}
	}
	r.Cancel([]Key{"k"}, w1)
	r.Cancel([]Key{"k"}, w2)
}
