package driver

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/lagtap/lagtap/internal/tap"
)

// ArrivalModel selects how request start times are spaced.
type ArrivalModel string

const (
	// ArrivalModelUniform paces requests at fixed intervals.
	ArrivalModelUniform ArrivalModel = "uniform"
	// ArrivalModelPoisson samples exponential inter-arrival times.
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure the Driver.
type Options struct {
	Concurrency    int           // number of worker goroutines
	TotalRequests  int           // total requests to execute (0 means unlimited until duration/end)
	Duration       time.Duration // overall time limit (0 means no duration cap)
	RatePerSecond  int           // requests per second pacing (0 means unlimited)
	Handler        tap.Handler   // request executor (required)
	ArrivalModel   ArrivalModel  // request spacing model (defaults to uniform)
	RandomSeed     int64         // seed for the poisson sampler (0 means time-based)
	PoissonSampler func() float64
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
