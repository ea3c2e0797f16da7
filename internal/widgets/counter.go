package widgets

import (
	"context"

	"github.com/conneroisu/formpulse/internal/store"
)

// Counter is the increment/decrement game. The high score never decreases;
// Reset only zeroes the session count.
type Counter struct {
	store     store.Store
	count     int
	clicks    int
	highScore int
}

// NewCounter reads the persisted high score once.
func NewCounter(ctx context.Context, s store.Store) (*Counter, error) {
	high, err := store.GetInt(ctx, s, store.KeyHighScore, 0)
	if err != nil {
		return nil, err
	}
	return &Counter{store: s, highScore: high}, nil
}

func (c *Counter) Count() int     { return c.count }
func (c *Counter) Clicks() int    { return c.clicks }
func (c *Counter) HighScore() int { return c.highScore }

// Increment adds one. It reports whether a new high score was set.
func (c *Counter) Increment(ctx context.Context) (bool, error) {
	c.count++
	return c.update(ctx)
}

// Decrement subtracts one.
func (c *Counter) Decrement(ctx context.Context) (bool, error) {
	c.count--
	return c.update(ctx)
}

// Reset zeroes the session count. It still counts as a click.
func (c *Counter) Reset(ctx context.Context) (bool, error) {
	c.count = 0
	return c.update(ctx)
}

// HandleKey maps keyboard shortcuts: ArrowUp, ArrowDown and r/R. Unmapped
// keys report handled=false.
func (c *Counter) HandleKey(ctx context.Context, key string) (handled, newHigh bool, err error) {
	switch key {
	case "ArrowUp":
		newHigh, err = c.Increment(ctx)
	case "ArrowDown":
		newHigh, err = c.Decrement(ctx)
	case "r", "R":
		newHigh, err = c.Reset(ctx)
	default:
		return false, false, nil
	}
	return true, newHigh, err
}

func (c *Counter) update(ctx context.Context) (bool, error) {
	c.clicks++
	if c.count <= c.highScore {
		return false, nil
	}
	c.highScore = c.count
	if err := store.SetInt(ctx, c.store, store.KeyHighScore, c.highScore); err != nil {
		return true, err
	}
	return true, nil
}
