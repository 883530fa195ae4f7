package bingo

import (
	"encoding/json"
	"fmt"
	"slices"
)

// CalledNumbers is the ordered, duplicate-free sequence of numbers announced
// during a bingo draw. The zero value is ready to use.
type CalledNumbers struct {
	order []int
	set   map[int]struct{}
}

// NewCalledNumbers builds a sequence from numbers already called, in order
func NewCalledNumbers(numbers ...int) (*CalledNumbers, error) {
	c := &CalledNumbers{}
	for _, n := range numbers {
		if err := c.Call(n); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Call appends n to the sequence
func (c *CalledNumbers) Call(n int) error {
	if n < MinBallNumber || n > MaxBallNumber {
		return ErrInvalidBallNumber.WithDetailsf("number=%d", n)
	}
	if c.set == nil {
		c.set = make(map[int]struct{}, MaxBallNumber)
	}
	if _, ok := c.set[n]; ok {
		return ErrDuplicateCall.WithDetailsf("number=%d", n)
	}
	c.set[n] = struct{}{}
	c.order = append(c.order, n)
	return nil
}

// NextNumber draws a number that has not been called yet, records it and
// returns it
func (c *CalledNumbers) NextNumber(rng RandomGenerator) (int, error) {
	remaining := c.Remaining()
	if len(remaining) == 0 {
		return 0, ErrDrawExhausted
	}

	n, _, err := takeRandom(rng, remaining)
	if err != nil {
		return 0, err
	}
	if err := c.Call(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Contains reports whether n has been called
func (c *CalledNumbers) Contains(n int) bool {
	if c == nil {
		return false
	}
	_, ok := c.set[n]
	return ok
}

// Len returns how many numbers have been called
func (c *CalledNumbers) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Last returns the most recently called number
func (c *CalledNumbers) Last() (int, bool) {
	if c.Len() == 0 {
		return 0, false
	}
	return c.order[len(c.order)-1], true
}

// Numbers returns a copy of the sequence in call order
func (c *CalledNumbers) Numbers() []int {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

// Remaining returns the numbers not yet called in ascending order
func (c *CalledNumbers) Remaining() []int {
	out := make([]int, 0, MaxBallNumber-c.Len())
	for n := MinBallNumber; n <= MaxBallNumber; n++ {
		if !c.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns an independent copy
func (c *CalledNumbers) Clone() *CalledNumbers {
	clone := &CalledNumbers{}
	for _, n := range c.Numbers() {
		_ = clone.Call(n)
	}
	return clone
}

// MarshalJSON encodes the sequence as an array in call order
func (c *CalledNumbers) MarshalJSON() ([]byte, error) {
	numbers := c.Numbers()
	if numbers == nil {
		numbers = []int{}
	}
	return json.Marshal(numbers)
}

// UnmarshalJSON decodes an array, re-validating every number
func (c *CalledNumbers) UnmarshalJSON(data []byte) error {
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return fmt.Errorf("decode called numbers: %w", err)
	}
	decoded, err := NewCalledNumbers(numbers...)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
