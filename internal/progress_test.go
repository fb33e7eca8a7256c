package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Testing",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Testing error",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowProgressWithSteps(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		steps   []ProgressStep
		wantRun int
		wantErr string
	}{
		{
			name: "successful steps",
			steps: []ProgressStep{
				{Message: "Step 1"},
				{Message: "Step 2"},
			},
			wantRun: 2,
		},
		{
			name: "stops at the failing step",
			steps: []ProgressStep{
				{Message: "Step 1"},
				{Message: "Step 2", Fn: func() error { return errors.New("step error") }},
				{Message: "Step 3"},
			},
			wantRun: 1,
			wantErr: "Step 2: step error",
		},
		{
			name:  "empty steps",
			steps: []ProgressStep{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := 0
			for i := range tt.steps {
				if tt.steps[i].Fn == nil {
					tt.steps[i].Fn = func() error { ran++; return nil }
				}
			}

			err := ShowProgressWithSteps(ctx, tt.steps)
			if tt.wantErr == "" && err != nil {
				t.Fatalf("ShowProgressWithSteps() error = %v", err)
			}
			if tt.wantErr != "" && (err == nil || err.Error() != tt.wantErr) {
				t.Fatalf("ShowProgressWithSteps() error = %v, want %q", err, tt.wantErr)
			}
			if ran != tt.wantRun {
				t.Errorf("ran %d steps, want %d", ran, tt.wantRun)
			}
		})
	}
}

func TestShowProgressWithSteps_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := ShowProgressWithSteps(ctx, []ProgressStep{{Message: "Step 1", Fn: func() error { called = true; return nil }}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ShowProgressWithSteps() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("step ran after the context was cancelled")
	}
}

func TestShowSpinner(t *testing.T) {
	var buf bytes.Buffer
	err := showSpinner(context.Background(), &buf, "Loading", func() error {
		time.Sleep(150 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showSpinner() error = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "✓") || !strings.HasSuffix(out, "Loading\n") {
		t.Errorf("spinner did not report success: %q", buf.String())
	}

	buf.Reset()
	err = showSpinner(context.Background(), &buf, "Loading", func() error { return errors.New("boom") })
	if err == nil || !strings.Contains(buf.String(), "✗") {
		t.Errorf("spinner did not report failure: err=%v out=%q", err, buf.String())
	}
}

func TestShowSpinner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	err := showSpinner(ctx, &bytes.Buffer{}, "Waiting", func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("showSpinner() error = %v, want context.DeadlineExceeded", err)
	}
}
