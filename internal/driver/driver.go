package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lagtap/lagtap/internal/tap"
)

// Result captures execution summary.
type Result struct {
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Driver coordinates concurrent execution with rate limiting.
type Driver struct {
	opt     Options
	arrival arrivalController
}

func New(opt Options) *Driver {
	opt.normalize()
	return &Driver{opt: opt, arrival: newArrivalController(opt)}
}

func (d *Driver) Run(ctx context.Context) Result {
	start := time.Now()
	var total int64
	var errs int64

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithTimeout(ctx, d.opt.Duration)
		ctx = deadlineCtx
		defer deadlineCancel()
	}

	permits := make(chan struct{}, d.opt.Concurrency)

	// Scheduler: serializes rate limiting to avoid burst overshoot across workers.
	go func() {
		defer close(permits)
		for {
			if ctx.Err() != nil {
				return
			}
			current := atomic.LoadInt64(&total)
			if d.opt.TotalRequests > 0 && current >= int64(d.opt.TotalRequests) {
				return
			}
			if d.arrival != nil {
				if err := d.arrival.Wait(ctx); err != nil {
					return
				}
			}
			// Increment total before releasing permit so workers only execute allocated slots.
			atomic.AddInt64(&total, 1)
			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(d.opt.Concurrency)
	for i := 0; i < d.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for range permits {
				if d.opt.Handler != nil {
					// Each request carries its own exchange so the handler and
					// any decorators observe the same method/status fields.
					reqCtx := tap.NewContext(ctx, &tap.Exchange{})
					if err := d.opt.Handler.Handle(reqCtx); err != nil {
						atomic.AddInt64(&errs, 1)
					}
				}
				if ctx.Err() != nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	return Result{
		Total:    atomic.LoadInt64(&total),
		Errors:   atomic.LoadInt64(&errs),
		Duration: time.Since(start),
	}
}
