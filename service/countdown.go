package service

import (
	"sync"
	"time"
)

// CountdownState is the state of a running countdown.
type CountdownState int

const (
	CountdownRunning CountdownState = iota
	CountdownExpired
)

// Countdown is a one-second-tick timer used for OTP expiry, resend cooldown
// and rate-limit lockout. It decrements once per tick and fires its expiry
// callback exactly once when the remaining seconds reach zero. Owners must
// call Stop when tearing down, mirroring setup, so no tick fires after the
// owning screen is gone.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	state     CountdownState
	onExpire  func()

	fireOnce sync.Once
	stopOnce sync.Once
	done     chan struct{}
}

func NewCountdown(seconds int, onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		state:     CountdownRunning,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
}

// Start begins ticking. A countdown created with zero or negative seconds
// expires immediately.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.remaining <= 0 {
		c.mu.Unlock()
		c.expire()
		return
	}
	c.mu.Unlock()

	go c.run()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != CountdownRunning {
				c.mu.Unlock()
				return
			}
			c.remaining--
			expired := c.remaining <= 0
			c.mu.Unlock()

			if expired {
				c.expire()
				return
			}
		}
	}
}

func (c *Countdown) expire() {
	c.mu.Lock()
	c.state = CountdownExpired
	c.remaining = 0
	c.mu.Unlock()

	c.fireOnce.Do(func() {
		if c.onExpire != nil {
			c.onExpire()
		}
	})
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// State returns RUNNING or EXPIRED.
func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stop tears the timer down without firing the expiry callback.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.mu.Lock()
	if c.state == CountdownRunning {
		c.state = CountdownExpired
	}
	c.mu.Unlock()
}

// LockoutService manages lockouts whose countdowns must survive a restart.
// Expiry is advisory: submissions are always re-validated upstream.
type LockoutService struct {
	store *LocalStore
}

func NewLockoutService(store *LocalStore) *LockoutService {
	return &LockoutService{store: store}
}

// Begin starts (or resumes) a lockout and returns the remaining seconds.
// On first encounter the end timestamp now+duration is persisted; on resume
// the remaining time is recomputed from the stored end. An already-elapsed
// end fires onExpire immediately, removes the key, and returns zero with a
// nil countdown.
func (s *LockoutService) Begin(key string, duration time.Duration, onExpire func()) (*Countdown, int, error) {
	end, ok, err := s.store.LockoutEnd(key)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		end = time.Now().Add(duration)
		if err := s.store.SetLockoutEnd(key, end); err != nil {
			return nil, 0, err
		}
	}

	remaining := int(time.Until(end).Round(time.Second).Seconds())
	if remaining <= 0 {
		_ = s.store.Delete(key)
		if onExpire != nil {
			onExpire()
		}
		return nil, 0, nil
	}

	countdown := NewCountdown(remaining, func() {
		_ = s.store.Delete(key)
		if onExpire != nil {
			onExpire()
		}
	})
	countdown.Start()
	return countdown, remaining, nil
}

// Arm persists a lockout end without starting a countdown. Callers that
// only need the remaining seconds on demand use this together with
// Remaining, which lazily removes elapsed keys, so no ticker goroutine is
// left behind. An existing end is resumed, not reset.
func (s *LockoutService) Arm(key string, duration time.Duration) (int, error) {
	end, ok, err := s.store.LockoutEnd(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		end = time.Now().Add(duration)
		if err := s.store.SetLockoutEnd(key, end); err != nil {
			return 0, err
		}
	}

	remaining := int(time.Until(end).Round(time.Second).Seconds())
	if remaining <= 0 {
		_ = s.store.Delete(key)
		return 0, nil
	}
	return remaining, nil
}

// Remaining reports the seconds left on a lockout without starting a
// countdown. An elapsed or absent lockout reports zero; elapsed keys are
// removed on the way out.
func (s *LockoutService) Remaining(key string) (int, error) {
	end, ok, err := s.store.LockoutEnd(key)
	if err != nil || !ok {
		return 0, err
	}

	remaining := int(time.Until(end).Round(time.Second).Seconds())
	if remaining <= 0 {
		_ = s.store.Delete(key)
		return 0, nil
	}
	return remaining, nil
}
