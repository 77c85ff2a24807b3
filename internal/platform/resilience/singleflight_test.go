package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32
	var shared atomic.Int32

	const callers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, followed := g.Do("squad:members:s1", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "members", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if val != "members" {
				t.Errorf("unexpected value: %v", val)
			}
			if followed {
				shared.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected loader to run once, got %d", got)
	}
	if shared.Load() == 0 {
		t.Fatal("expected at least one caller to share the in-flight result")
	}
}

func TestSingleFlight_SequentialCallsRunIndependently(t *testing.T) {
	var g SingleFlight
	var executions int

	for i := 0; i < 3; i++ {
		if _, err, followed := g.Do("board:b1", func() (any, error) {
			executions++
			return nil, nil
		}); err != nil || followed {
			t.Fatalf("sequential call %d: err=%v followed=%t", i, err, followed)
		}
	}

	if executions != 3 {
		t.Fatalf("expected 3 executions, got %d", executions)
	}
}
