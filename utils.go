package bingo

import (
	"slices"
)

// ValidateRange validates range parameters
func ValidateRange(min, max int) error {
	if min > max {
		return ErrInvalidRange
	}
	return nil
}

// ValidateCount validates count parameter for multiple draws
func ValidateCount(count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	return nil
}

// TicketRange builds the ticket pool of a raffle numbered from min to max
func TicketRange(min, max int) ([]int, error) {
	size, err := ticketPoolSize(min, max)
	if err != nil {
		return nil, err
	}

	tickets := make([]int, size)
	for i := range tickets {
		tickets[i] = min + i
	}
	return tickets, nil
}

// ticketPoolSize counts the tickets numbered min to max. The span is taken in
// uint64 so ranges reaching math.MinInt or math.MaxInt cannot wrap around.
func ticketPoolSize(min, max int) (int, error) {
	if err := ValidateRange(min, max); err != nil {
		return 0, ErrInvalidTicketRange.WithDetailsf("min=%d, max=%d", min, max).WithCause(err)
	}
	span := uint64(max) - uint64(min)
	if span >= MaxTicketPoolSize {
		return 0, ErrInvalidTicketRange.WithDetailsf("pool %d-%d exceeds %d tickets", min, max, MaxTicketPoolSize)
	}
	return int(span) + 1, nil
}

// ensureUniqueTickets rejects pools holding the same ticket number twice
func ensureUniqueTickets(tickets []int) error {
	seen := make(map[int]struct{}, len(tickets))
	for _, t := range tickets {
		if _, dup := seen[t]; dup {
			return ErrDuplicateTicket.WithDetailsf("ticket %d", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// takeRandom removes one uniformly chosen element from candidates and returns it
// together with the shrunk slice. Order of the remaining elements is preserved.
func takeRandom(rng RandomGenerator, candidates []int) (int, []int, error) {
	idx, err := rng.GenerateInRange(0, len(candidates)-1)
	if err != nil {
		return 0, candidates, err
	}
	value := candidates[idx]
	return value, slices.Delete(candidates, idx, idx+1), nil
}

// sampleWithoutReplacement draws up to count values from candidates, which is
// consumed in place. Fewer values are returned when candidates runs out.
func sampleWithoutReplacement(rng RandomGenerator, candidates []int, count int) ([]int, []int, error) {
	picked := make([]int, 0, min(count, len(candidates)))
	for i := 0; i < count && len(candidates) > 0; i++ {
		var (
			value int
			err   error
		)
		value, candidates, err = takeRandom(rng, candidates)
		if err != nil {
			return picked, candidates, err
		}
		picked = append(picked, value)
	}
	return picked, candidates, nil
}
