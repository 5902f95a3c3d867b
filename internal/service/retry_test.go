package service

import (
	"context"
	"errors"
	"testing"
)

func TestRetryStale(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		attempts  int
		results   []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", attempts: 3, results: []error{nil}, wantCalls: 1},
		{name: "recovers", attempts: 3, results: []error{ErrStaleState, ErrStaleState, nil}, wantCalls: 3},
		{name: "exhausted", attempts: 3, results: []error{ErrStaleState, ErrStaleState, ErrStaleState}, wantCalls: 3, wantErr: ErrConflict},
		{name: "other errors stop", attempts: 3, results: []error{ErrStaleState, boom}, wantCalls: 2, wantErr: boom},
		{name: "unavailable not retried", attempts: 3, results: []error{ErrRepositoryUnavailable}, wantCalls: 1, wantErr: ErrRepositoryUnavailable},
		{name: "zero budget still tries once", attempts: 0, results: []error{ErrStaleState}, wantCalls: 1, wantErr: ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryStale(context.Background(), "test", tt.attempts, func(attempt int) error {
				calls++
				if attempt != calls {
					t.Fatalf("attempt=%d calls=%d", attempt, calls)
				}
				return tt.results[calls-1]
			})
			if calls != tt.wantCalls {
				t.Fatalf("calls=%d want=%d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryStaleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryStale(ctx, "test", 5, func(int) error {
		calls++
		cancel()
		return ErrStaleState
	})
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
	if !errors.Is(err, ErrRepositoryUnavailable) {
		t.Fatalf("err=%v want unavailable", err)
	}
}
