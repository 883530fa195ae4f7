package bingo

import (
	"fmt"
	"math"
)

// PrizeKind distinguishes free-ticket prizes from cash prizes
type PrizeKind string

const (
	PrizeFree PrizeKind = "free"
	PrizeCash PrizeKind = "cash"
)

// PrizeTier is one instant prize level of a raffle
type PrizeTier struct {
	ID          string    `json:"id" mapstructure:"id"`                   // Tier ID, prefix of entry ids
	Kind        PrizeKind `json:"kind" mapstructure:"kind"`               // free or cash
	Amount      int       `json:"amount" mapstructure:"amount"`           // Cash amount, 0 for free tickets
	Probability float64   `json:"probability" mapstructure:"probability"` // Share of the ticket pool (0-1)
}

// Validate validates the tier data
func (t *PrizeTier) Validate() error {
	if t.ID == "" {
		return ErrInvalidPrizeTier.WithDetails("tier id is empty")
	}
	if t.Probability < 0 || t.Probability > 1 {
		return ErrInvalidProbability.WithDetailsf("tier %s: %v", t.ID, t.Probability)
	}

	switch t.Kind {
	case PrizeFree:
		if t.Amount != 0 {
			return ErrInvalidPrizeTier.WithDetailsf("free tier %s carries amount %d", t.ID, t.Amount)
		}
	case PrizeCash:
		if t.Amount <= 0 {
			return ErrInvalidPrizeTier.WithDetailsf("cash tier %s needs a positive amount", t.ID)
		}
	default:
		return ErrInvalidPrizeTier.WithDetailsf("tier %s has unknown kind %q", t.ID, t.Kind)
	}
	return nil
}

// Quota returns how many prizes the tier gets out of a pool of n tickets
func (t *PrizeTier) Quota(n int) int {
	return int(math.Floor(float64(n) * t.Probability))
}

// DefaultPrizeTiers returns the instant prize tiers in allocation order
func DefaultPrizeTiers() []PrizeTier {
	return []PrizeTier{
		{ID: "free", Kind: PrizeFree, Amount: 0, Probability: 0.05},
		{ID: "5000", Kind: PrizeCash, Amount: 5000, Probability: 0.03},
		{ID: "10000", Kind: PrizeCash, Amount: 10000, Probability: 0.02},
		{ID: "15000", Kind: PrizeCash, Amount: 15000, Probability: 0.015},
		{ID: "25000", Kind: PrizeCash, Amount: 25000, Probability: 0.01},
		{ID: "50000", Kind: PrizeCash, Amount: 50000, Probability: 0.005},
	}
}

// ValidatePrizeTiers validates a tier list: every tier is valid, ids are
// unique and probabilities sum to at most 1
func ValidatePrizeTiers(tiers []PrizeTier) error {
	if len(tiers) == 0 {
		return ErrInvalidPrizeTier.WithDetails("no tiers configured")
	}

	seen := make(map[string]struct{}, len(tiers))
	var total float64
	for i := range tiers {
		if err := tiers[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[tiers[i].ID]; dup {
			return ErrInvalidPrizeTier.WithDetailsf("duplicate tier id %s", tiers[i].ID)
		}
		seen[tiers[i].ID] = struct{}{}
		total += tiers[i].Probability
	}

	if total > 1.0+ProbabilityTolerance {
		return ErrInvalidProbability.WithDetailsf("tier probabilities sum to %v", total)
	}
	return nil
}

// PrizeEntry binds an instant prize to a ticket number
type PrizeEntry struct {
	ID           string    `json:"id"`
	TierID       string    `json:"tier_id"`
	TicketNumber int       `json:"ticket_number"`
	Kind         PrizeKind `json:"kind"`
	Amount       int       `json:"amount"`
	Claimed      bool      `json:"claimed"`
}

// InstantPrizePool is the set of instant prizes of a raffle. Each ticket
// number appears in at most one entry.
type InstantPrizePool []PrizeEntry

// Resolve returns the unclaimed entry for ticket, if any. It never mutates the pool.
func (p InstantPrizePool) Resolve(ticket int) (*PrizeEntry, bool) {
	for i := range p {
		if p[i].TicketNumber == ticket && !p[i].Claimed {
			entry := p[i]
			return &entry, true
		}
	}
	return nil, false
}

// Claim marks the entry with the given id as claimed
func (p InstantPrizePool) Claim(id string) error {
	for i := range p {
		if p[i].ID != id {
			continue
		}
		if p[i].Claimed {
			return ErrPrizeAlreadyClaimed.WithDetailsf("entry %s", id)
		}
		p[i].Claimed = true
		return nil
	}
	return ErrPrizeNotFound.WithDetailsf("entry %s", id)
}

// CountByTier returns how many entries each tier received
func (p InstantPrizePool) CountByTier() map[string]int {
	counts := make(map[string]int)
	for _, e := range p {
		counts[e.TierID]++
	}
	return counts
}

// Unclaimed returns the number of entries not yet claimed
func (p InstantPrizePool) Unclaimed() int {
	n := 0
	for _, e := range p {
		if !e.Claimed {
			n++
		}
	}
	return n
}

// Clone returns an independent copy
func (p InstantPrizePool) Clone() InstantPrizePool {
	if p == nil {
		return nil
	}
	out := make(InstantPrizePool, len(p))
	copy(out, p)
	return out
}

// AllocateInstantPrizes distributes the default tiers over tickets
func AllocateInstantPrizes(rng RandomGenerator, tickets []int) (InstantPrizePool, error) {
	return AllocateInstantPrizesWithTiers(rng, tickets, DefaultPrizeTiers())
}

// AllocateInstantPrizesWithTiers gives each tier, in order, floor(N x probability)
// tickets drawn without replacement from the shared remaining pool. A tier
// gets fewer prizes once the pool runs out.
func AllocateInstantPrizesWithTiers(rng RandomGenerator, tickets []int, tiers []PrizeTier) (InstantPrizePool, error) {
	if err := ValidatePrizeTiers(tiers); err != nil {
		return nil, err
	}
	if len(tickets) > MaxTicketPoolSize {
		return nil, ErrInvalidTicketRange.WithDetailsf("pool of %d tickets exceeds %d", len(tickets), MaxTicketPoolSize)
	}
	if err := ensureUniqueTickets(tickets); err != nil {
		return nil, err
	}

	n := len(tickets)
	pool := InstantPrizePool{}
	if n == 0 {
		return pool, nil
	}

	remaining := make([]int, n)
	copy(remaining, tickets)

	for _, tier := range tiers {
		var (
			picked []int
			err    error
		)
		picked, remaining, err = sampleWithoutReplacement(rng, remaining, tier.Quota(n))
		if err != nil {
			return nil, err
		}

		for _, ticket := range picked {
			pool = append(pool, PrizeEntry{
				ID:           fmt.Sprintf("%s-%d", tier.ID, ticket),
				TierID:       tier.ID,
				TicketNumber: ticket,
				Kind:         tier.Kind,
				Amount:       tier.Amount,
			})
		}
	}

	return pool, nil
}

// ResolveInstantPrize returns the unclaimed entry of pool for ticket, or false
func ResolveInstantPrize(ticket int, pool InstantPrizePool) (*PrizeEntry, bool) {
	return pool.Resolve(ticket)
}
