package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAccumulatesByName(t *testing.T) {
	tm := NewTimer()
	tm.Add("parse", 2*time.Millisecond, "")
	tm.Add("split", time.Millisecond, "")
	tm.Add("parse", 3*time.Millisecond, "2 files")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	p := r.Phases[0]
	if p.Name != "parse" || p.Count != 2 || p.DurationMS != 5 || p.Note != "2 files" {
		t.Errorf("unexpected parse phase %+v", p)
	}
	if r.TotalMS != 6 {
		t.Errorf("TotalMS = %v, want 6", r.TotalMS)
	}

	s := tm.Summary()
	if !strings.HasPrefix(s, "timings:\n  parse") || !strings.Contains(s, "// 2 files") {
		t.Errorf("unexpected summary:\n%s", s)
	}
}

func TestTimerConcurrentStopwatches(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Begin("reconstruct").End("")
		}()
	}
	wg.Wait()
	if got := tm.Report().Phases[0].Count; got != 8 {
		t.Fatalf("Count = %d, want 8", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Begin("x").End("")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatal("nil timer reported phases")
	}
}
