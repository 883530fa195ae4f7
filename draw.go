package bingo

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DrawStatus is the lifecycle state of a bingo draw
type DrawStatus string

const (
	DrawScheduled DrawStatus = "scheduled"
	DrawRunning   DrawStatus = "running"
	DrawFinished  DrawStatus = "finished"
)

// PlayerCard is a card issued to a player for a draw
type PlayerCard struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"player_id"`
	Card     Card      `json:"card"`
	IssuedAt time.Time `json:"issued_at"`
}

// CardWin reports the win state of one issued card
type CardWin struct {
	CardID   string    `json:"card_id"`
	PlayerID string    `json:"player_id"`
	Result   WinResult `json:"result"`
}

// BingoDraw owns the cards issued for a draw and the numbers called so far.
// Cards can be issued until the first number is called.
type BingoDraw struct {
	mu sync.RWMutex

	id         string
	name       string
	cardPrice  int
	status     DrawStatus
	called     *CalledNumbers
	cards      []PlayerCard
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
}

// NewBingoDraw creates a scheduled draw
func NewBingoDraw(name string, cardPrice int) (*BingoDraw, error) {
	if name == "" {
		return nil, ErrInvalidParameters.WithDetails("draw name is empty")
	}
	if cardPrice < 0 {
		return nil, ErrInvalidParameters.WithDetailsf("card price %d", cardPrice)
	}

	return &BingoDraw{
		id:        uuid.NewString(),
		name:      name,
		cardPrice: cardPrice,
		status:    DrawScheduled,
		called:    &CalledNumbers{},
		createdAt: time.Now(),
	}, nil
}

func (d *BingoDraw) ID() string   { return d.id }
func (d *BingoDraw) Name() string { return d.name }

// CardPrice returns the price of one card
func (d *BingoDraw) CardPrice() int { return d.cardPrice }

// Status returns the lifecycle state
func (d *BingoDraw) Status() DrawStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.status
}

// Called returns a copy of the numbers called so far
func (d *BingoDraw) Called() *CalledNumbers {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.called.Clone()
}

// Cards returns a copy of the issued cards
func (d *BingoDraw) Cards() []PlayerCard {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]PlayerCard(nil), d.cards...)
}

// CardsOf returns the cards issued to playerID
func (d *BingoDraw) CardsOf(playerID string) []PlayerCard {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []PlayerCard
	for _, c := range d.cards {
		if c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

// IssueCard generates a card for playerID
func (d *BingoDraw) IssueCard(engine *Engine, playerID string) (PlayerCard, error) {
	if playerID == "" {
		return PlayerCard{}, ErrInvalidParameters.WithDetails("player id is empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status != DrawScheduled {
		return PlayerCard{}, ErrInvalidState.WithDetailsf("draw %s is %s", d.id, d.status)
	}

	card, err := engine.GenerateCard()
	if err != nil {
		return PlayerCard{}, err
	}

	pc := PlayerCard{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Card:     card,
		IssuedAt: time.Now(),
	}
	d.cards = append(d.cards, pc)
	return pc, nil
}

// Start moves a scheduled draw to running
func (d *BingoDraw) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.startLocked()
}

func (d *BingoDraw) startLocked() error {
	switch d.status {
	case DrawScheduled:
		d.status = DrawRunning
		d.startedAt = time.Now()
		return nil
	case DrawRunning:
		return nil
	default:
		return ErrInvalidState.WithDetailsf("draw %s is %s", d.id, d.status)
	}
}

// CallNext draws and records the next number, starting the draw if needed
func (d *BingoDraw) CallNext(engine *Engine) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.startLocked(); err != nil {
		return 0, err
	}
	return engine.CallNumber(d.called)
}

// Call records a number announced outside the engine, starting the draw if needed
func (d *BingoDraw) Call(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.startLocked(); err != nil {
		return err
	}
	return d.called.Call(n)
}

// Finish closes the draw; no more numbers can be called
func (d *BingoDraw) Finish() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == DrawFinished {
		return ErrInvalidState.WithDetailsf("draw %s already finished", d.id)
	}
	d.status = DrawFinished
	d.finishedAt = time.Now()
	return nil
}

// Results evaluates every issued card against the numbers called so far.
// Cards are checked concurrently; results keep the issue order.
func (d *BingoDraw) Results(ctx context.Context, engine *Engine) ([]CardWin, error) {
	d.mu.RLock()
	cards := append([]PlayerCard(nil), d.cards...)
	called := d.called.Clone()
	d.mu.RUnlock()

	results := make([]CardWin, len(cards))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pc := range cards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := engine.CheckWin(pc.Card, called)
			if err != nil {
				return err
			}
			results[i] = CardWin{CardID: pc.ID, PlayerID: pc.PlayerID, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Winners returns the cards that currently cover a winning pattern
func (d *BingoDraw) Winners(ctx context.Context, engine *Engine) ([]CardWin, error) {
	results, err := d.Results(ctx, engine)
	if err != nil {
		return nil, err
	}

	winners := make([]CardWin, 0, len(results))
	for _, r := range results {
		if r.Result.IsWinner {
			winners = append(winners, r)
		}
	}
	return winners, nil
}

type drawSnapshot struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	CardPrice  int            `json:"card_price"`
	Status     DrawStatus     `json:"status"`
	Called     *CalledNumbers `json:"called"`
	Cards      []PlayerCard   `json:"cards"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// MarshalJSON encodes the draw with its cards as flat arrays of 25 integers
func (d *BingoDraw) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return json.Marshal(drawSnapshot{
		ID:         d.id,
		Name:       d.name,
		CardPrice:  d.cardPrice,
		Status:     d.status,
		Called:     d.called,
		Cards:      d.cards,
		CreatedAt:  d.createdAt,
		StartedAt:  d.startedAt,
		FinishedAt: d.finishedAt,
	})
}

// UnmarshalJSON decodes a draw, validating every card and called number
func (d *BingoDraw) UnmarshalJSON(data []byte) error {
	var s drawSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.ID == "" {
		return ErrStateCorrupted.WithDetails("draw without id")
	}
	switch s.Status {
	case DrawScheduled, DrawRunning, DrawFinished:
	default:
		return ErrStateCorrupted.WithDetailsf("draw %s has unknown status %q", s.ID, s.Status)
	}
	if s.Called == nil {
		s.Called = &CalledNumbers{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.id = s.ID
	d.name = s.Name
	d.cardPrice = s.CardPrice
	d.status = s.Status
	d.called = s.Called
	d.cards = s.Cards
	d.createdAt = s.CreatedAt
	d.startedAt = s.StartedAt
	d.finishedAt = s.FinishedAt
	return nil
}
