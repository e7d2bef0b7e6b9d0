package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/tessro/cadence/internal/core"
)

func TestNullRecordsCalls(t *testing.T) {
	ctx := context.Background()
	d := NewNull(nil)

	if err := d.Play(ctx, core.Track{ID: "t1", AudioURL: "https://cdn/t1.mp3"}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	_ = d.Pause(ctx)
	_ = d.Resume(ctx)
	_ = d.SetVolume(ctx, 0.25)
	_ = d.Stop(ctx)

	want := []string{"play t1", "pause", "resume", "volume 0.25", "stop"}
	calls := d.Calls()
	if len(calls) != len(want) {
		t.Fatalf("Calls() = %v, want %v", calls, want)
	}
	for i, c := range calls {
		if c.String() != want[i] {
			t.Errorf("call %d = %q, want %q", i, c.String(), want[i])
		}
	}

	d.Reset()
	if len(d.Calls()) != 0 {
		t.Error("Reset() did not clear calls")
	}
}

func TestNullRejectsUnplayableTrack(t *testing.T) {
	d := NewNull(nil)
	if err := d.Play(context.Background(), core.Track{ID: "silent"}); err == nil {
		t.Error("Play() without audio url should fail")
	}
	if len(d.Calls()) != 1 {
		t.Error("failed play should still be recorded")
	}
}

func TestNullFailOn(t *testing.T) {
	ctx := context.Background()
	d := NewNull(nil)
	boom := errors.New("device lost")

	d.FailOn(ActionPause, boom)
	if err := d.Pause(ctx); !errors.Is(err, boom) {
		t.Errorf("Pause() error = %v, want %v", err, boom)
	}

	d.FailOn(ActionPause, nil)
	if err := d.Pause(ctx); err != nil {
		t.Errorf("Pause() after clearing error = %v", err)
	}
}

func TestNullHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewNull(nil)
	if err := d.Stop(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Stop() error = %v, want context.Canceled", err)
	}
}
