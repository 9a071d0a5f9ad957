// internal/minigame/runner.go
//
// Mini-game scoring machines.
// Responsibilities:
//   - Define the Runner contract: a value-typed state that folds events.
//   - Parse the textual event format used by the play endpoints.
//   - Pick the runner for a mission's mini-game tag.
//
// Notes:
//   - Runners carry no pointers; Apply returns a fresh value and the caller
//     keeps the only copy.
//   - A finished runner rejects further events with ErrFinished.

package minigame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
)

var (
	ErrFinished     = errors.New("game already finished")
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadTarget    = errors.New("invalid event target")
)

// Result is what a finished mini-game reports to the progression service.
type Result struct {
	Stars int `json:"stars"`
	Score int `json:"score"`
}

// Event is one player action, e.g. "clean:3" or "sort:2:toy".
type Event struct {
	Kind   string
	Target string
	Arg    string
}

// ParseEvent splits "kind[:target[:arg]]".
func ParseEvent(s string) (Event, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Event{}, fmt.Errorf("%w: empty", ErrUnknownEvent)
	}
	parts := strings.SplitN(s, ":", 3)
	ev := Event{Kind: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		ev.Target = parts[1]
	}
	if len(parts) > 2 {
		ev.Arg = parts[2]
	}
	return ev, nil
}

// Runner is the explicit state of one mini-game.
type Runner interface {
	// Game returns the mini-game tag.
	Game() string
	// Apply folds ev into the state and returns the new state.
	Apply(ev Event) (Runner, error)
	// Result reports the outcome once the game is over.
	Result() (Result, bool)
}

// ForMission returns the starting runner for a mini-game tag. Tags without a
// dedicated runner get the simulated game.
func ForMission(tag string) Runner {
	switch tag {
	case catalog.GameCleaning:
		return NewCleaning()
	case catalog.GameSorting:
		return NewSorting()
	case catalog.GameHelping:
		return NewHelping()
	default:
		return Simulated{Tag: tag}
	}
}
