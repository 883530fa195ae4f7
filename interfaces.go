package bingo

import "context"

// RandomGenerator is the source of randomness used by card generation,
// number calling and prize allocation
type RandomGenerator interface {
	// GenerateInRange returns a uniformly distributed number within [min, max]
	GenerateInRange(min, max int) (int, error)
}

// Store persists the aggregates that own cards and prize pools
type Store interface {
	// SaveDraw persists a bingo draw
	SaveDraw(ctx context.Context, draw *BingoDraw) error

	// LoadDraw loads a bingo draw by id, returning ErrStateNotFound when absent
	LoadDraw(ctx context.Context, id string) (*BingoDraw, error)

	// DeleteDraw removes a bingo draw
	DeleteDraw(ctx context.Context, id string) error

	// SaveRaffle persists a raffle
	SaveRaffle(ctx context.Context, raffle *Raffle) error

	// LoadRaffle loads a raffle by id, returning ErrStateNotFound when absent
	LoadRaffle(ctx context.Context, id string) (*Raffle, error)

	// DeleteRaffle removes a raffle
	DeleteRaffle(ctx context.Context, id string) error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
