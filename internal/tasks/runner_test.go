package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmit_RunsDetached(t *testing.T) {
	r := New(time.Second)
	defer r.Close(time.Second)

	var ran atomic.Bool
	done := make(chan struct{})
	r.Submit("test", func(ctx context.Context) error {
		ran.Store(true)
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
	if !ran.Load() {
		t.Fatalf("expected job to have run")
	}
}

func TestSubmit_FailureIsSwallowed(t *testing.T) {
	r := New(time.Second)
	defer r.Close(time.Second)

	done := make(chan struct{})
	r.Submit("failing", func(ctx context.Context) error {
		close(done)
		return errors.New("boom")
	})
	<-done
	// Nothing to assert beyond "no panic, no propagation".
}

func TestSubmit_PanicIsRecovered(t *testing.T) {
	r := New(time.Second)

	r.Submit("panicking", func(ctx context.Context) error {
		panic("boom")
	})
	r.Close(time.Second)
}

func TestClose_CancelsJobContext(t *testing.T) {
	r := New(time.Minute)

	started := make(chan struct{})
	cancelled := make(chan struct{})
	r.Submit("long", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})

	<-started
	r.Close(2 * time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("job context was not cancelled on Close")
	}
}
