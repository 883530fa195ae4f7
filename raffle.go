package bingo

import (
	"encoding/json"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RaffleStatus is the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleOpen     RaffleStatus = "open"
	RaffleFinished RaffleStatus = "finished"
)

// RaffleConfig describes a raffle to create
type RaffleConfig struct {
	Name          string `json:"name"`
	TicketPrice   int    `json:"ticket_price"`
	MinNumber     int    `json:"min_number"`
	MaxNumber     int    `json:"max_number"`
	InstantPrizes bool   `json:"instant_prizes"`
}

// Validate validates the raffle settings
func (c *RaffleConfig) Validate() error {
	if c.Name == "" {
		return ErrInvalidParameters.WithDetails("raffle name is empty")
	}
	if c.TicketPrice < 0 {
		return ErrInvalidParameters.WithDetailsf("ticket price %d", c.TicketPrice)
	}
	if _, err := ticketPoolSize(c.MinNumber, c.MaxNumber); err != nil {
		return err
	}
	return nil
}

// Purchase is the outcome of buying raffle tickets
type Purchase struct {
	BuyerID       string       `json:"buyer_id"`
	Numbers       []int        `json:"numbers"`
	Total         int          `json:"total"`
	InstantPrizes []PrizeEntry `json:"instant_prizes,omitempty"`
}

// Raffle owns a ticket pool, the tickets sold and the instant prizes
// allocated when it was created. The prize pool is never regenerated.
type Raffle struct {
	mu sync.RWMutex

	id        string
	config    RaffleConfig
	status    RaffleStatus
	prizes    InstantPrizePool
	sold      map[int]string
	winner    int
	createdAt time.Time
	drawnAt   time.Time
}

// NewRaffle creates an open raffle, allocating instant prizes over its whole
// ticket range when enabled
func NewRaffle(engine *Engine, cfg RaffleConfig) (*Raffle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tickets, err := TicketRange(cfg.MinNumber, cfg.MaxNumber)
	if err != nil {
		return nil, err
	}

	r := &Raffle{
		id:        uuid.NewString(),
		config:    cfg,
		status:    RaffleOpen,
		prizes:    InstantPrizePool{},
		sold:      make(map[int]string),
		createdAt: time.Now(),
	}

	if cfg.InstantPrizes {
		r.prizes, err = engine.AllocateInstantPrizes(tickets)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Raffle) ID() string { return r.id }

// Config returns the raffle settings
func (r *Raffle) Config() RaffleConfig { return r.config }

// Status returns the lifecycle state
func (r *Raffle) Status() RaffleStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// InstantPrizes returns a copy of the prize pool
func (r *Raffle) InstantPrizes() InstantPrizePool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prizes.Clone()
}

// Available returns the unsold ticket numbers in ascending order
func (r *Raffle) Available() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Raffle) availableLocked() []int {
	size := r.config.MaxNumber - r.config.MinNumber + 1
	out := make([]int, 0, size-len(r.sold))
	for i := range size {
		n := r.config.MinNumber + i
		if _, taken := r.sold[n]; !taken {
			out = append(out, n)
		}
	}
	return out
}

// Sold returns the sold ticket numbers in ascending order
func (r *Raffle) Sold() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.soldLocked()
}

func (r *Raffle) soldLocked() []int {
	out := make([]int, 0, len(r.sold))
	for n := range r.sold {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Owner returns the buyer of ticket
func (r *Raffle) Owner(ticket int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buyer, ok := r.sold[ticket]
	return buyer, ok
}

// PickRandomNumbers suggests count distinct unsold numbers, sorted
func (r *Raffle) PickRandomNumbers(engine *Engine, count int) ([]int, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}

	r.mu.RLock()
	available := r.availableLocked()
	r.mu.RUnlock()

	if count > len(available) {
		return nil, ErrTicketUnavailable.WithDetailsf("requested %d, %d available", count, len(available))
	}

	picked, _, err := sampleWithoutReplacement(engine.RandomGenerator(), available, count)
	if err != nil {
		return nil, err
	}
	sort.Ints(picked)
	return picked, nil
}

// Purchase sells numbers to buyerID. Every number must be unsold and within
// the raffle range; the purchase is all or nothing. Instant prizes bound to
// the bought numbers are resolved and claimed.
func (r *Raffle) Purchase(engine *Engine, buyerID string, numbers []int) (*Purchase, error) {
	if buyerID == "" {
		return nil, ErrInvalidParameters.WithDetails("buyer id is empty")
	}
	if err := ValidateCount(len(numbers)); err != nil {
		return nil, err
	}
	if err := ensureUniqueTickets(numbers); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RaffleOpen {
		return nil, ErrInvalidState.WithDetailsf("raffle %s is %s", r.id, r.status)
	}
	for _, n := range numbers {
		if n < r.config.MinNumber || n > r.config.MaxNumber {
			return nil, ErrTicketUnavailable.WithDetailsf("ticket %d outside %d-%d", n, r.config.MinNumber, r.config.MaxNumber)
		}
		if _, taken := r.sold[n]; taken {
			return nil, ErrTicketUnavailable.WithDetailsf("ticket %d already sold", n)
		}
	}

	bought := slices.Clone(numbers)
	sort.Ints(bought)

	p := &Purchase{
		BuyerID: buyerID,
		Numbers: bought,
		Total:   len(bought) * r.config.TicketPrice,
	}
	for _, n := range bought {
		r.sold[n] = buyerID

		entry, ok := engine.ResolveInstantPrize(n, r.prizes)
		if !ok {
			continue
		}
		if err := r.prizes.Claim(entry.ID); err != nil {
			return nil, err
		}
		entry.Claimed = true
		p.InstantPrizes = append(p.InstantPrizes, *entry)
	}
	return p, nil
}

// DrawWinner picks the winning number uniformly among the sold tickets and
// closes the raffle
func (r *Raffle) DrawWinner(engine *Engine) (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RaffleOpen {
		return 0, "", ErrInvalidState.WithDetailsf("raffle %s is %s", r.id, r.status)
	}
	sold := r.soldLocked()
	if len(sold) == 0 {
		return 0, "", ErrNoTicketsSold
	}

	winner, _, err := takeRandom(engine.RandomGenerator(), sold)
	if err != nil {
		return 0, "", err
	}

	r.winner = winner
	r.status = RaffleFinished
	r.drawnAt = time.Now()
	return winner, r.sold[winner], nil
}

// Winner returns the drawn winning number
func (r *Raffle) Winner() (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.winner, r.status == RaffleFinished
}

type raffleSnapshot struct {
	ID        string           `json:"id"`
	Config    RaffleConfig     `json:"config"`
	Status    RaffleStatus     `json:"status"`
	Prizes    InstantPrizePool `json:"prizes"`
	Sold      map[int]string   `json:"sold"`
	Winner    int              `json:"winner,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	DrawnAt   time.Time        `json:"drawn_at"`
}

// MarshalJSON encodes the raffle with its prize records
func (r *Raffle) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return json.Marshal(raffleSnapshot{
		ID:        r.id,
		Config:    r.config,
		Status:    r.status,
		Prizes:    r.prizes,
		Sold:      r.sold,
		Winner:    r.winner,
		CreatedAt: r.createdAt,
		DrawnAt:   r.drawnAt,
	})
}

// UnmarshalJSON decodes a raffle and checks the prize pool invariant
func (r *Raffle) UnmarshalJSON(data []byte) error {
	var s raffleSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.ID == "" {
		return ErrStateCorrupted.WithDetails("raffle without id")
	}
	switch s.Status {
	case RaffleOpen, RaffleFinished:
	default:
		return ErrStateCorrupted.WithDetailsf("raffle %s has unknown status %q", s.ID, s.Status)
	}
	if err := s.Config.Validate(); err != nil {
		return ErrStateCorrupted.WithDetailsf("raffle %s", s.ID).WithCause(err)
	}

	tickets := make([]int, 0, len(s.Prizes))
	for _, e := range s.Prizes {
		tickets = append(tickets, e.TicketNumber)
	}
	if err := ensureUniqueTickets(tickets); err != nil {
		return ErrStateCorrupted.WithDetailsf("raffle %s prize pool", s.ID).WithCause(err)
	}
	if s.Prizes == nil {
		s.Prizes = InstantPrizePool{}
	}
	if s.Sold == nil {
		s.Sold = make(map[int]string)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.id = s.ID
	r.config = s.Config
	r.status = s.Status
	r.prizes = s.Prizes
	r.sold = s.Sold
	r.winner = s.Winner
	r.createdAt = s.CreatedAt
	r.drawnAt = s.DrawnAt
	return nil
}
