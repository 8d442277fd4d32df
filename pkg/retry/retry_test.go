package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingSleeper accumulates requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *recordingSleeper) total() time.Duration {
	var sum time.Duration
	for _, d := range s.delays {
		sum += d
	}
	return sum
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	sl := &recordingSleeper{}
	retrier := NewRetrier(NewDefaultConfig(), WithSleeper(sl.sleep))

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
	if len(sl.delays) != 0 {
		t.Errorf("expected no sleeps, got %v", sl.delays)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	sl := &recordingSleeper{}
	retrier := NewRetrier(NewDefaultConfig(), WithSleeper(sl.sleep))

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		if counter < 2 {
			return errors.New("temporary error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 2 {
		t.Errorf("expected 2 attempts, got %d", counter)
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	config := NewDefaultConfig()
	config.MaxRetries = 2
	sl := &recordingSleeper{}
	retrier := NewRetrier(config, WithSleeper(sl.sleep))

	expectedErr := errors.New("still failing")
	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
	if len(sl.delays) != 2 {
		t.Errorf("expected 2 sleeps between 3 attempts, got %d", len(sl.delays))
	}
}

func TestRetry_FixedDelay(t *testing.T) {
	sl := &recordingSleeper{}
	retrier := NewRetrier(NewFixedConfig(3, 10*time.Second), WithSleeper(sl.sleep))

	counter := 0
	_ = retrier.Do(context.Background(), func() error {
		counter++
		return errors.New("404")
	})

	if counter != 3 {
		t.Fatalf("expected 3 attempts, got %d", counter)
	}
	for i, d := range sl.delays {
		if d != 10*time.Second {
			t.Errorf("delay %d: expected 10s, got %v", i, d)
		}
	}
	if sl.total() != 20*time.Second {
		t.Errorf("expected 20s total, got %v", sl.total())
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	sl := &recordingSleeper{}
	retrier := NewRetrier(NewDefaultConfig(), WithSleeper(sl.sleep))

	cause := errors.New("bad request")
	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return Permanent(cause)
	})
	if err != cause {
		t.Errorf("expected unwrapped cause, got %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_NotifyCountsRetries(t *testing.T) {
	sl := &recordingSleeper{}
	var seen []int
	retrier := NewRetrier(NewFixedConfig(2, time.Second),
		WithSleeper(sl.sleep),
		WithNotify(func(attempt int, err error) { seen = append(seen, attempt) }),
	)

	_ = retrier.Do(context.Background(), func() error { return errors.New("boom") })

	if len(seen) != 1 || seen[0] != 1 {
		t.Errorf("expected notify for attempt 1 only, got %v", seen)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	err := retrier.Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	config := &Config{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      250 * time.Millisecond,
	}
	sl := &recordingSleeper{}
	retrier := NewRetrier(config, WithSleeper(sl.sleep))

	_ = retrier.Do(context.Background(), func() error { return errors.New("error") })

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond}
	if len(sl.delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), sl.delays)
	}
	for i := range want {
		if sl.delays[i] != want[i] {
			t.Errorf("sleep %d: expected %v, got %v", i, want[i], sl.delays[i])
		}
	}
}
