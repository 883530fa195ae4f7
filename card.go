package bingo

import (
	"encoding/json"
	"fmt"
)

// Card is a 5x5 bingo card indexed as [row][column].
// Column c draws from ColumnRange(c) and the centre cell holds FreeSpace.
type Card [CardSize][CardSize]int

// ColumnLetters names the columns of a card
var ColumnLetters = [CardSize]string{"B", "I", "N", "G", "O"}

// ColumnRange returns the inclusive number range of column col
func ColumnRange(col int) (min, max int) {
	min = col*ColumnSpan + 1
	return min, min + ColumnSpan - 1
}

// Letter returns the column letter a called number belongs to
func Letter(n int) (string, error) {
	if n < MinBallNumber || n > MaxBallNumber {
		return "", ErrInvalidBallNumber.WithDetailsf("number=%d", n)
	}
	return ColumnLetters[(n-1)/ColumnSpan], nil
}

// GenerateCard builds a new card. Each column samples five numbers from its
// range without replacement; the centre of column N is the free space.
func GenerateCard(rng RandomGenerator) (Card, error) {
	var card Card

	for col := range CardSize {
		lo, hi := ColumnRange(col)
		candidates := make([]int, 0, ColumnSpan)
		for n := lo; n <= hi; n++ {
			candidates = append(candidates, n)
		}

		for row := range CardSize {
			if row == FreeRow && col == FreeCol {
				card[row][col] = FreeSpace
				continue
			}

			var (
				value int
				err   error
			)
			value, candidates, err = takeRandom(rng, candidates)
			if err != nil {
				return Card{}, err
			}
			card[row][col] = value
		}
	}

	return card, nil
}

// Validate checks the shape of a card: the free space sits in the centre and
// nowhere else, every other value lies in its column range, and values are
// distinct within a column.
func (c Card) Validate() error {
	for col := range CardSize {
		lo, hi := ColumnRange(col)
		seen := make(map[int]struct{}, CardSize)

		for row := range CardSize {
			v := c[row][col]

			if row == FreeRow && col == FreeCol {
				if v != FreeSpace {
					return ErrInvalidCard.WithDetailsf("centre cell holds %d, want free space", v)
				}
				continue
			}

			if v < lo || v > hi {
				return ErrInvalidCard.WithDetailsf("cell (%d,%d)=%d outside column %s range %d-%d",
					row, col, v, ColumnLetters[col], lo, hi)
			}
			if _, dup := seen[v]; dup {
				return ErrInvalidCard.WithDetailsf("column %s repeats %d", ColumnLetters[col], v)
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}

// Column returns the five values of column col from top to bottom
func (c Card) Column(col int) [CardSize]int {
	var out [CardSize]int
	for row := range CardSize {
		out[row] = c[row][col]
	}
	return out
}

// Flatten returns the card as 25 values in row-major order
func (c Card) Flatten() []int {
	flat := make([]int, 0, CardSize*CardSize)
	for row := range CardSize {
		flat = append(flat, c[row][:]...)
	}
	return flat
}

// CardFromFlat rebuilds a card from 25 row-major values and validates it
func CardFromFlat(values []int) (Card, error) {
	var card Card
	if len(values) != CardSize*CardSize {
		return card, ErrInvalidCard.WithDetailsf("expected %d values, got %d", CardSize*CardSize, len(values))
	}
	for i, v := range values {
		card[i/CardSize][i%CardSize] = v
	}
	if err := card.Validate(); err != nil {
		return Card{}, err
	}
	return card, nil
}

// MarshalJSON encodes the card as a flat array of 25 integers
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Flatten())
}

// UnmarshalJSON decodes a flat array of 25 integers, rejecting malformed cards
func (c *Card) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode card: %w", err)
	}
	card, err := CardFromFlat(values)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// String renders the card as a B-I-N-G-O grid, the free space shown as "*"
func (c Card) String() string {
	out := fmt.Sprintf("%3s%3s%3s%3s%3s\n", ColumnLetters[0], ColumnLetters[1], ColumnLetters[2], ColumnLetters[3], ColumnLetters[4])
	for row := range CardSize {
		for col := range CardSize {
			if c[row][col] == FreeSpace {
				out += fmt.Sprintf("%3s", "*")
				continue
			}
			out += fmt.Sprintf("%3d", c[row][col])
		}
		out += "\n"
	}
	return out
}
