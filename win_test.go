package bingo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCalled(t *testing.T, numbers ...int) *CalledNumbers {
	t.Helper()
	c, err := NewCalledNumbers(numbers...)
	require.NoError(t, err)
	return c
}

// allNumbers returns every non-free value of card
func allNumbers(card Card) []int {
	var out []int
	for _, v := range card.Flatten() {
		if v != FreeSpace {
			out = append(out, v)
		}
	}
	return out
}

func TestCheckWin(t *testing.T) {
	tests := []struct {
		name   string
		called []int
		want   WinResult
	}{
		{
			name:   "nothing called",
			called: nil,
			want:   WinResult{Type: WinNone, MatchedLines: []int{}},
		},
		{
			name:   "first row",
			called: []int{5, 20, 35, 50, 65},
			want:   WinResult{IsWinner: true, Type: WinLine, MatchedLines: []int{0}},
		},
		{
			name:   "middle row uses the free space",
			called: []int{7, 22, 52, 67},
			want:   WinResult{IsWinner: true, Type: WinLine, MatchedLines: []int{2}},
		},
		{
			name:   "first column",
			called: []int{5, 6, 7, 8, 9},
			want:   WinResult{IsWinner: true, Type: WinLine, MatchedLines: []int{5}},
		},
		{
			name:   "main diagonal",
			called: []int{5, 21, 53, 69},
			want:   WinResult{IsWinner: true, Type: WinDiagonal, MatchedLines: []int{10}},
		},
		{
			name:   "anti diagonal",
			called: []int{65, 51, 23, 9},
			want:   WinResult{IsWinner: true, Type: WinDiagonal, MatchedLines: []int{11}},
		},
		{
			name:   "row and diagonal report line",
			called: []int{5, 20, 35, 50, 65, 21, 53, 69},
			want:   WinResult{IsWinner: true, Type: WinLine, MatchedLines: []int{0, 10}},
		},
		{
			name:   "X shape",
			called: []int{5, 21, 53, 69, 65, 51, 23, 9},
			want:   WinResult{IsWinner: true, Type: WinShape, Shape: ShapeX, MatchedLines: []int{10, 11}},
		},
		{
			name:   "T shape",
			called: []int{5, 20, 35, 50, 65, 36, 38, 39},
			want:   WinResult{IsWinner: true, Type: WinShape, Shape: ShapeT, MatchedLines: []int{0, 7}},
		},
		{
			name:   "L shape",
			called: []int{5, 6, 7, 8, 9, 24, 39, 54, 69},
			want:   WinResult{IsWinner: true, Type: WinShape, Shape: ShapeL, MatchedLines: []int{4, 5}},
		},
		{
			name:   "U shape is reported as L",
			called: []int{5, 6, 7, 8, 9, 24, 39, 54, 69, 65, 66, 67, 68},
			want:   WinResult{IsWinner: true, Type: WinShape, Shape: ShapeL, MatchedLines: []int{4, 5, 9}},
		},
		{
			name:   "full card keeps every line",
			called: allNumbers(testCard),
			want: WinResult{
				IsWinner:     true,
				Type:         WinFull,
				MatchedLines: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
			},
		},
		{
			name:   "numbers not on the card",
			called: []int{1, 2, 3, 4, 10, 11, 12, 13, 14, 15},
			want:   WinResult{Type: WinNone, MatchedLines: []int{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckWin(testCard, mustCalled(t, tt.called...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckWinNilCalled(t *testing.T) {
	got, err := CheckWin(testCard, nil)
	require.NoError(t, err)
	assert.False(t, got.IsWinner)
	assert.Equal(t, WinNone, got.Type)
}

func TestCheckWinInvalidCard(t *testing.T) {
	card := testCard
	card[0][0] = 99
	_, err := CheckWin(card, mustCalled(t, 5))
	assert.True(t, errors.Is(err, ErrInvalidCard))
}

func TestCheckWinProperties(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		rng := NewSeededRandomGenerator(seed)
		card, err := GenerateCard(rng)
		require.NoError(t, err)

		t.Run("fresh card with nothing called never wins", func(t *testing.T) {
			got, err := CheckWin(card, &CalledNumbers{})
			require.NoError(t, err)
			assert.False(t, got.IsWinner)
			assert.Equal(t, WinNone, got.Type)
			assert.Empty(t, got.MatchedLines)
		})

		t.Run("results are monotonic as numbers are called", func(t *testing.T) {
			called := &CalledNumbers{}
			var prev WinResult
			sawFull := false
			for called.Len() < MaxBallNumber {
				_, err := called.NextNumber(rng)
				require.NoError(t, err)

				got, err := CheckWin(card, called)
				require.NoError(t, err)

				assert.Subset(t, got.MatchedLines, prev.MatchedLines)
				if prev.IsWinner {
					assert.True(t, got.IsWinner)
				}
				if sawFull {
					assert.Equal(t, WinFull, got.Type)
				}
				if got.Type == WinFull {
					sawFull = true
				}
				prev = got
			}
			assert.True(t, sawFull, "all 75 numbers called must cover the card")
		})

		t.Run("every row covered is a full card", func(t *testing.T) {
			got, err := CheckWin(card, mustCalled(t, allNumbers(card)...))
			require.NoError(t, err)
			assert.Equal(t, WinFull, got.Type)
			assert.Len(t, got.MatchedLines, 12)
		})
	}
}

func TestIsDiagonalLine(t *testing.T) {
	assert.True(t, IsDiagonalLine(MainDiagonalLine))
	assert.True(t, IsDiagonalLine(AntiDiagonalLine))
	for id := range 10 {
		assert.False(t, IsDiagonalLine(id))
	}
}
