package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tessro/cadence/internal/core"
)

func track(id string) core.Track {
	return core.Track{ID: id, Title: "Song " + id}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Track.ID
	}
	return out
}

func TestRecordMostRecentFirst(t *testing.T) {
	r := New(10)
	r.Record(track("a"))
	r.Record(track("b"))
	r.Record(track("c"))

	got := fmt.Sprint(ids(r.Entries()))
	if got != "[c b a]" {
		t.Errorf("Entries() = %s, want [c b a]", got)
	}
}

func TestRecordDeduplicates(t *testing.T) {
	r := New(10)
	r.Record(track("a"))
	r.Record(track("b"))
	r.Record(core.Track{ID: "a", Title: "Replayed"})

	entries := r.Entries()
	if got := fmt.Sprint(ids(entries)); got != "[a b]" {
		t.Fatalf("Entries() = %s, want [a b]", got)
	}
	if entries[0].Track.Title != "Replayed" {
		t.Errorf("front entry title = %q, want the latest recorded track", entries[0].Track.Title)
	}
}

func TestRecordTruncates(t *testing.T) {
	r := New(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		r.Record(track(id))
	}

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	if got := fmt.Sprint(ids(r.Entries())); got != "[e d c]" {
		t.Errorf("Entries() = %s, want [e d c]", got)
	}
}

func TestRecordAtCapacityMovesExisting(t *testing.T) {
	r := New(3)
	for _, id := range []string{"a", "b", "c"} {
		r.Record(track(id))
	}
	r.Record(track("a"))

	if got := fmt.Sprint(ids(r.Entries())); got != "[a c b]" {
		t.Errorf("Entries() = %s, want [a c b]", got)
	}
}

func TestDefaultMax(t *testing.T) {
	r := New(0)
	if r.Max() != DefaultMax {
		t.Errorf("Max() = %d, want %d", r.Max(), DefaultMax)
	}
	for i := 0; i < DefaultMax+10; i++ {
		r.Record(track(fmt.Sprint(i)))
	}
	if r.Len() != DefaultMax {
		t.Errorf("Len() = %d, want %d", r.Len(), DefaultMax)
	}
}

func TestRecordUsesClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := New(5, WithClock(func() time.Time { return at }))
	r.Record(track("a"))

	if got := r.Entries()[0].PlayedAt; !got.Equal(at) {
		t.Errorf("PlayedAt = %v, want %v", got, at)
	}
}

func TestEntriesIsACopy(t *testing.T) {
	r := New(5)
	r.Record(track("a"))
	entries := r.Entries()
	entries[0].Track.ID = "mutated"

	if r.Entries()[0].Track.ID != "a" {
		t.Error("Entries() exposed internal storage")
	}
}

func TestLoad(t *testing.T) {
	r := New(2)
	r.Load([]Entry{{Track: track("a")}, {Track: track("a")}, {Track: track("b")}, {Track: track("c")}})

	if got := fmt.Sprint(ids(r.Entries())); got != "[a b]" {
		t.Errorf("Entries() after Load = %s, want [a b]", got)
	}
}

func TestOnChange(t *testing.T) {
	var seen [][]Entry
	r := New(5, OnChange(func(e []Entry) { seen = append(seen, e) }))
	r.Record(track("a"))
	r.Clear()

	if len(seen) != 2 {
		t.Fatalf("OnChange called %d times, want 2", len(seen))
	}
	if len(seen[0]) != 1 || len(seen[1]) != 0 {
		t.Errorf("OnChange snapshots = %v", seen)
	}
	if got := r.Tracks(); len(got) != 0 {
		t.Errorf("Tracks() after Clear = %v", got)
	}
}

func TestOnChangeFollowsMutationOrder(t *testing.T) {
	for range 200 {
		var (
			mu   sync.Mutex
			last []Entry
		)
		r := New(50, OnChange(func(e []Entry) {
			mu.Lock()
			last = e
			mu.Unlock()
		}))

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Record(track(fmt.Sprint(i)))
			}()
		}
		wg.Wait()

		mu.Lock()
		got := ids(last)
		mu.Unlock()
		if want := ids(r.Entries()); fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("last OnChange = %v, Entries() = %v", got, want)
		}
	}
}
