package simulate

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/accordo-ai/accordo/observability"
)

// Events emitted by the batch runner.
const (
	EventBatchStart    observability.EventType = "simulate.batch.start"
	EventBatchComplete observability.EventType = "simulate.batch.complete"
)

// Run is one self-play negotiation to execute.
type Run struct {
	Scenario     Scenario
	OpeningPrice float64
	Terms        string
}

// Outcome summarizes one finished self-play negotiation. Detected is
// the scenario inferred from the vendor's own quoted prices, reported
// next to the assigned one as a check on the detector.
type Outcome struct {
	Scenario   Scenario `json:"scenario"`
	Detected   Scenario `json:"detected_scenario,omitempty"`
	Status     string   `json:"status"`
	Rounds     int      `json:"rounds"`
	FinalPrice float64  `json:"final_price,omitempty"`
	Fallbacks  int      `json:"fallbacks"`
}

// RunFunc executes a single self-play negotiation to completion.
type RunFunc func(ctx context.Context, run Run) (Outcome, error)

// RunBatch executes runs concurrently and returns outcomes in input
// order. Deals are independent, so parallelism is bounded only by the
// worker count; workers <= 0 auto-sizes from the CPU count. The first
// error cancels the remaining work.
func RunBatch(ctx context.Context, observer observability.Observer, workers int, runs []Run, fn RunFunc) ([]Outcome, error) {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(runs) {
		workers = len(runs)
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventBatchStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "simulate",
		Data:      map[string]any{"runs": len(runs), "workers": workers},
	})

	if len(runs) == 0 {
		return []Outcome{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		run   Run
	}
	jobs := make(chan job, len(runs))
	for i, r := range runs {
		jobs <- job{index: i, run: r}
	}
	close(jobs)

	outcomes := make([]Outcome, len(runs))
	errs := make([]error, len(runs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					errs[j.index] = ctx.Err()
					continue
				}
				out, err := fn(ctx, j.run)
				if err != nil {
					errs[j.index] = err
					cancel()
					continue
				}
				outcomes[j.index] = out
			}
		}()
	}
	wg.Wait()

	var failed int
	var firstErr error
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventBatchComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "simulate",
		Data:      map[string]any{"runs": len(runs), "failed": failed},
	})

	if firstErr != nil {
		return outcomes, fmt.Errorf("simulate: %d of %d runs failed: %w", failed, len(runs), firstErr)
	}
	return outcomes, nil
}
