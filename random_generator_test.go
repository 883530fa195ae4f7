package bingo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureRandomGenerator(t *testing.T) {
	gen := NewSecureRandomGenerator()

	t.Run("范围生成正确性", func(t *testing.T) {
		for range 1000 {
			result, err := gen.GenerateInRange(1, 75)
			require.NoError(t, err)
			require.GreaterOrEqual(t, result, 1)
			require.LessOrEqual(t, result, 75)
		}
	})

	t.Run("边界情况", func(t *testing.T) {
		result, err := gen.GenerateInRange(5, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, result)

		_, err = gen.GenerateInRange(6, 5)
		assert.True(t, errors.Is(err, ErrInvalidRange))
	})

	t.Run("覆盖整个范围", func(t *testing.T) {
		seen := map[int]bool{}
		for range 2000 {
			n, err := gen.GenerateInRange(0, 9)
			require.NoError(t, err)
			seen[n] = true
		}
		assert.Len(t, seen, 10)
	})
}

func TestSeededRandomGenerator(t *testing.T) {
	t.Run("相同种子相同序列", func(t *testing.T) {
		a := NewSeededRandomGenerator(99)
		b := NewSeededRandomGenerator(99)
		for range 100 {
			x, err := a.GenerateInRange(1, 1000)
			require.NoError(t, err)
			y, err := b.GenerateInRange(1, 1000)
			require.NoError(t, err)
			assert.Equal(t, x, y)
		}
	})

	t.Run("不同种子不同序列", func(t *testing.T) {
		a := NewSeededRandomGenerator(1)
		b := NewSeededRandomGenerator(2)
		same := true
		for range 20 {
			x, _ := a.GenerateInRange(1, 1_000_000)
			y, _ := b.GenerateInRange(1, 1_000_000)
			if x != y {
				same = false
			}
		}
		assert.False(t, same)
	})

	t.Run("负数范围", func(t *testing.T) {
		g := NewSeededRandomGenerator(5)
		for range 500 {
			n, err := g.GenerateInRange(-3, 3)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, -3)
			assert.LessOrEqual(t, n, 3)
		}

		_, err := g.GenerateInRange(2, 1)
		assert.True(t, errors.Is(err, ErrInvalidRange))
	})
}

func TestNewRandomGenerator(t *testing.T) {
	assert.IsType(t, &SecureRandomGenerator{}, NewRandomGenerator(nil))
	assert.IsType(t, &SecureRandomGenerator{}, NewRandomGenerator(DefaultEngineConfig()))

	cfg := DefaultEngineConfig()
	cfg.SecureRandom = false
	cfg.Seed = 8
	gen := NewRandomGenerator(cfg)
	require.IsType(t, &SeededRandomGenerator{}, gen)

	want, _ := NewSeededRandomGenerator(8).GenerateInRange(1, 100)
	got, _ := gen.GenerateInRange(1, 100)
	assert.Equal(t, want, got)
}
