package sketch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	c := NewCoordinator()
	tk := c.Request("Login", "a login form")
	if p, ok := c.Pending(); !ok || p.Title != "Login" || p.Prompt != "a login form" {
		t.Fatalf("Pending() = %+v, %v", p, ok)
	}
	go c.Complete("Login v2", "<svg/>", `{"id":"x"}`)

	res, err := tk.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Title != "Login v2" || res.SVG != "<svg/>" || res.JSON != `{"id":"x"}` {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := c.Pending(); ok {
		t.Error("slot should be free after completion")
	}
}

func TestSupersede(t *testing.T) {
	c := NewCoordinator()
	a := c.Request("A", "p1")
	b := c.Request("B", "p2")

	_, err := a.Wait(context.Background())
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first request: expected ErrSuperseded, got %v", err)
	}
	select {
	case <-b.Done():
		t.Fatal("second request settled early")
	default:
	}
	if p, _ := c.Pending(); p.Title != "B" {
		t.Errorf("pending = %+v, want B", p)
	}
	c.Complete("B", "<svg/>", "{}")
	res, err := b.Wait(context.Background())
	if err != nil || !res.Success {
		t.Errorf("second request: %+v %v", res, err)
	}
}

func TestCancel(t *testing.T) {
	c := NewCoordinator()
	tk := c.Request("A", "p")
	if !c.Cancel("") {
		t.Fatal("Cancel reported nothing pending")
	}
	res, err := tk.Wait(context.Background())
	if err != nil {
		t.Fatalf("cancel should resolve, not reject: %v", err)
	}
	if res.Success || !strings.HasPrefix(res.Error, "User cancelled") {
		t.Errorf("unexpected result %+v", res)
	}
	if c.Cancel("again") || c.Complete("x", "", "") {
		t.Error("nothing should be pending")
	}
}

func TestWait_ContextCancel(t *testing.T) {
	c := NewCoordinator()
	tk := c.Request("A", "p")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res, err := tk.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || !strings.Contains(res.Error, "deadline exceeded") {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := c.Pending(); ok {
		t.Error("cancelled ticket still holds the slot")
	}
}

func TestStaleCancelDoesNotFreeNewSlot(t *testing.T) {
	c := NewCoordinator()
	a := c.Request("A", "p1")
	c.Request("B", "p2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Wait(ctx); !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded to win, got %v", err)
	}
	if p, ok := c.Pending(); !ok || p.Title != "B" {
		t.Error("stale waiter freed the newer request")
	}
}
