package minigame

import (
	"fmt"
	"strconv"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
)

// ---- cleaning ----

const (
	cleaningSpots = 5
	cleaningTicks = 15
)

// Cleaning: clear every spot before the timer runs out. Faster is better.
type Cleaning struct {
	Cleaned   [cleaningSpots]bool `json:"cleaned"`
	Remaining int                 `json:"remaining"`
}

func NewCleaning() Cleaning { return Cleaning{Remaining: cleaningTicks} }

func (Cleaning) Game() string { return catalog.GameCleaning }

func (c Cleaning) Apply(ev Event) (Runner, error) {
	if c.done() {
		return c, ErrFinished
	}
	switch ev.Kind {
	case "clean":
		i, err := index(ev.Target, cleaningSpots)
		if err != nil {
			return c, err
		}
		c.Cleaned[i] = true
	case "tick":
		if c.Remaining > 0 {
			c.Remaining--
		}
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return c, nil
}

func (c Cleaning) done() bool {
	for _, ok := range c.Cleaned {
		if !ok {
			return false
		}
	}
	return true
}

// Result: 3 stars with more than 10 ticks left, 2 with more than 5, else 1.
// Running out of time does not end the game.
func (c Cleaning) Result() (Result, bool) {
	if !c.done() {
		return Result{}, false
	}
	stars := 1
	switch {
	case c.Remaining > 10:
		stars = 3
	case c.Remaining > 5:
		stars = 2
	}
	return Result{Stars: stars, Score: 1000 + c.Remaining*10}, true
}

// ---- sorting ----

const sortingItems = 5

// Sorting: put every item into a bin.
type Sorting struct {
	Bins [sortingItems]string `json:"bins"` // "" = unsorted
}

func NewSorting() Sorting { return Sorting{} }

func (Sorting) Game() string { return catalog.GameSorting }

func (s Sorting) Apply(ev Event) (Runner, error) {
	if s.done() {
		return s, ErrFinished
	}
	if ev.Kind != "sort" {
		return s, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	i, err := index(ev.Target, sortingItems)
	if err != nil {
		return s, err
	}
	if s.Bins[i] != "" {
		return s, fmt.Errorf("%w: item %d already sorted", ErrBadTarget, i+1)
	}
	switch ev.Arg {
	case "toy", "clothes":
		s.Bins[i] = ev.Arg
	default:
		return s, fmt.Errorf("%w: bin %q", ErrBadTarget, ev.Arg)
	}
	return s, nil
}

func (s Sorting) done() bool {
	for _, b := range s.Bins {
		if b == "" {
			return false
		}
	}
	return true
}

func (s Sorting) Result() (Result, bool) {
	if !s.done() {
		return Result{}, false
	}
	return Result{Stars: 3, Score: 1500}, true
}

// ---- helping ----

const helpingTasks = 3

// Helping: finish every helping task.
type Helping struct {
	Done [helpingTasks]bool `json:"done"`
}

func NewHelping() Helping { return Helping{} }

func (Helping) Game() string { return catalog.GameHelping }

func (h Helping) Apply(ev Event) (Runner, error) {
	if _, over := h.Result(); over {
		return h, ErrFinished
	}
	if ev.Kind != "help" {
		return h, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	i, err := index(ev.Target, helpingTasks)
	if err != nil {
		return h, err
	}
	h.Done[i] = true
	return h, nil
}

func (h Helping) Result() (Result, bool) {
	for _, ok := range h.Done {
		if !ok {
			return Result{}, false
		}
	}
	return Result{Stars: 3, Score: 2000}, true
}

// ---- simulated ----

// Simulated stands in for mini-games without a dedicated runner.
type Simulated struct {
	Tag      string `json:"tag"`
	Finished bool   `json:"finished"`
}

func (s Simulated) Game() string { return s.Tag }

func (s Simulated) Apply(ev Event) (Runner, error) {
	if s.Finished {
		return s, ErrFinished
	}
	if ev.Kind != "simulate" {
		return s, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	s.Finished = true
	return s, nil
}

func (s Simulated) Result() (Result, bool) {
	if !s.Finished {
		return Result{}, false
	}
	return Result{Stars: 2, Score: 500}, true
}

// index parses a 1-based target into a 0-based index below n.
func index(target string, n int) (int, error) {
	i, err := strconv.Atoi(target)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%w: %q", ErrBadTarget, target)
	}
	return i - 1, nil
}
