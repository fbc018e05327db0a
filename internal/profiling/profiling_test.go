package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for i := 0; i < 3; i++ {
		stop := Track("world.Tick")
		time.Sleep(time.Millisecond)
		stop()
	}
	if c := Count("world.Tick"); c != 3 {
		t.Fatalf("Count = %d, want 3", c)
	}
	if d := Snapshot()["world.Tick"]; d < 3*time.Millisecond {
		t.Errorf("total %v, want >= 3ms", d)
	}
}

func TestSumWithPrefix(t *testing.T) {
	ResetFrame()
	Track("world.LoadPass")()
	Track("world.UnloadPass")()
	Track("renderer.Draw")()

	snap := Snapshot()
	want := snap["world.LoadPass"] + snap["world.UnloadPass"]
	if got := SumWithPrefix("world."); got != want {
		t.Errorf("SumWithPrefix(world.) = %v, want %v", got, want)
	}
}

func TestResetFrame(t *testing.T) {
	Track("a")()
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Errorf("expected empty snapshot after reset")
	}
	if TopN(5) != "" {
		t.Errorf("expected empty TopN after reset")
	}
}

func TestTopNOrdering(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["slow"] = 4200 * time.Microsecond
	frameTotals["fast"] = 2 * time.Millisecond
	frameTotals["tiny"] = 100 * time.Microsecond
	mu.Unlock()

	got := TopN(2)
	if got != "slow:4.2ms, fast:2ms" {
		t.Errorf("TopN(2) = %q", got)
	}
	if !strings.Contains(TopN(10), "tiny:0.1ms") {
		t.Errorf("TopN(10) missing tiny entry: %q", TopN(10))
	}
}
