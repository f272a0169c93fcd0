package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func() error

type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
}

// NewDefaultConfig returns a config tuned for paginated API fetches: a few
// quick retries, capped well below typical rate-limit windows.
func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    4,
		BackoffFactor: 2.0,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		Jitter:        100 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
	rnd    *rand.Rand
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{
		config: config,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op until it succeeds, the retry budget is exhausted, or ctx is
// cancelled. The last operation error is returned on exhaustion.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.config.InitialDelay

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		if attempt == r.config.MaxRetries {
			return err
		}

		jitter := time.Duration(r.rnd.Float64() * float64(r.config.Jitter))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + jitter):
		}

		delay = time.Duration(float64(delay) * r.config.BackoffFactor)
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}
	return err
}
