package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/daxgen/internal/mq"
)

func TestNew_Defaults(t *testing.T) {
	w := New(Config{})

	if w.queue != mq.QueueRequests {
		t.Errorf("queue = %q, want %q", w.queue, mq.QueueRequests)
	}
	if w.prefetch != defaultPrefetch {
		t.Errorf("prefetch = %d, want %d", w.prefetch, defaultPrefetch)
	}
	if w.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", w.timeout, defaultTimeout)
	}
	if w.IsStopped() {
		t.Error("new worker should not be stopped")
	}
}

func TestStart_NotConfigured(t *testing.T) {
	w := New(Config{Handler: func(ctx context.Context, d *mq.Delivery) error { return nil }})

	if err := w.Start(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	w.Stop()
	if !w.IsStopped() {
		t.Error("worker should be stopped")
	}
}

func TestHandle(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name          string
		handler       mq.Handler
		wantErr       error
		wantPermanent bool
	}{
		{
			name:    "success",
			handler: func(ctx context.Context, d *mq.Delivery) error { return nil },
		},
		{
			name:    "error passes through",
			handler: func(ctx context.Context, d *mq.Delivery) error { return errBoom },
			wantErr: errBoom,
		},
		{
			name: "timeout",
			handler: func(ctx context.Context, d *mq.Delivery) error {
				<-ctx.Done()
				return ctx.Err()
			},
			wantErr: context.DeadlineExceeded,
		},
		{
			name:          "panic is permanent",
			handler:       func(ctx context.Context, d *mq.Delivery) error { panic("bad request") },
			wantPermanent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(Config{Handler: tt.handler, Timeout: 20 * time.Millisecond})

			err := w.handle(context.Background(), &mq.Delivery{Message: mq.Message{ID: "m1"}})

			if tt.wantErr == nil && !tt.wantPermanent && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantPermanent && !errors.Is(err, mq.ErrPermanent) {
				t.Errorf("expected ErrPermanent, got %v", err)
			}
		})
	}
}
