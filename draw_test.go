package bingo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraw(t *testing.T) *BingoDraw {
	t.Helper()
	d, err := NewBingoDraw("viernes", 1500)
	require.NoError(t, err)
	return d
}

func TestNewBingoDraw(t *testing.T) {
	d := newTestDraw(t)
	_, err := uuid.Parse(d.ID())
	assert.NoError(t, err)
	assert.Equal(t, "viernes", d.Name())
	assert.Equal(t, 1500, d.CardPrice())
	assert.Equal(t, DrawScheduled, d.Status())
	assert.Equal(t, 0, d.Called().Len())

	_, err = NewBingoDraw("", 10)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
	_, err = NewBingoDraw("x", -1)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
}

func TestBingoDraw_Lifecycle(t *testing.T) {
	engine := newTestEngine(77)
	d := newTestDraw(t)

	a, err := d.IssueCard(engine, "ana")
	require.NoError(t, err)
	_, err = d.IssueCard(engine, "luis")
	require.NoError(t, err)
	_, err = d.IssueCard(engine, "ana")
	require.NoError(t, err)

	_, err = d.IssueCard(engine, "")
	assert.True(t, errors.Is(err, ErrInvalidParameters))

	assert.Len(t, d.Cards(), 3)
	assert.Len(t, d.CardsOf("ana"), 2)
	assert.Equal(t, a, d.CardsOf("ana")[0])
	assert.NotEqual(t, d.Cards()[0].ID, d.Cards()[2].ID)

	n, err := d.CallNext(engine)
	require.NoError(t, err)
	assert.Equal(t, DrawRunning, d.Status())
	assert.True(t, d.Called().Contains(n))

	_, err = d.IssueCard(engine, "late")
	assert.True(t, errors.Is(err, ErrInvalidState))

	next := 1
	for d.Called().Contains(next) {
		next++
	}
	require.NoError(t, d.Call(next))
	assert.True(t, errors.Is(d.Call(next), ErrDuplicateCall))

	require.NoError(t, d.Finish())
	assert.Equal(t, DrawFinished, d.Status())
	assert.True(t, errors.Is(d.Finish(), ErrInvalidState))

	_, err = d.CallNext(engine)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(d.Call(75), ErrInvalidState))
	assert.True(t, errors.Is(d.Start(), ErrInvalidState))
}

func TestBingoDraw_Called(t *testing.T) {
	d := newTestDraw(t)
	require.NoError(t, d.Call(10))

	called := d.Called()
	require.NoError(t, called.Call(11))
	assert.Equal(t, []int{10}, d.Called().Numbers())
}

func TestBingoDraw_Winners(t *testing.T) {
	engine := newTestEngine(5)
	d := newTestDraw(t)
	ctx := context.Background()

	for _, p := range []string{"p1", "p2", "p3", "p4"} {
		_, err := d.IssueCard(engine, p)
		require.NoError(t, err)
	}

	winners, err := d.Winners(ctx, engine)
	require.NoError(t, err)
	assert.Empty(t, winners)

	// call the first row of p2's card
	target := d.CardsOf("p2")[0]
	for _, v := range target.Card[0] {
		require.NoError(t, d.Call(v))
	}

	results, err := d.Results(ctx, engine)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, d.Cards()[i].ID, r.CardID)
	}

	winners, err = d.Winners(ctx, engine)
	require.NoError(t, err)
	require.NotEmpty(t, winners)

	var found bool
	for _, w := range winners {
		assert.True(t, w.Result.IsWinner)
		if w.CardID == target.ID {
			found = true
			assert.Equal(t, "p2", w.PlayerID)
			assert.Contains(t, w.Result.MatchedLines, FirstRowLine)
		}
	}
	assert.True(t, found)

	// every number called: all cards are full
	for {
		if _, err := d.CallNext(engine); err != nil {
			require.True(t, errors.Is(err, ErrDrawExhausted))
			break
		}
	}
	winners, err = d.Winners(ctx, engine)
	require.NoError(t, err)
	require.Len(t, winners, 4)
	for _, w := range winners {
		assert.Equal(t, WinFull, w.Result.Type)
	}
}

func TestBingoDraw_WinnersCancelled(t *testing.T) {
	engine := newTestEngine(6)
	d := newTestDraw(t)
	for range 10 {
		_, err := d.IssueCard(engine, "p")
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Winners(ctx, engine)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBingoDraw_ConcurrentCalls(t *testing.T) {
	engine := NewEngine()
	d := newTestDraw(t)
	for i := range 20 {
		_, err := d.IssueCard(engine, string(rune('a'+i)))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 15 {
				_, err := d.CallNext(engine)
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for range 15 {
				_, err := d.Winners(context.Background(), engine)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, MaxBallNumber, d.Called().Len())
}

func TestBingoDraw_JSON(t *testing.T) {
	engine := newTestEngine(8)
	d := newTestDraw(t)
	_, err := d.IssueCard(engine, "ana")
	require.NoError(t, err)
	require.NoError(t, d.Call(12))
	require.NoError(t, d.Call(40))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var restored BingoDraw
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, d.ID(), restored.ID())
	assert.Equal(t, d.Name(), restored.Name())
	assert.Equal(t, DrawRunning, restored.Status())
	assert.Equal(t, []int{12, 40}, restored.Called().Numbers())
	require.Len(t, restored.Cards(), 1)
	assert.Equal(t, d.Cards()[0].Card, restored.Cards()[0].Card)
	assert.Equal(t, d.Cards()[0].ID, restored.Cards()[0].ID)

	t.Run("unknown status", func(t *testing.T) {
		var bad BingoDraw
		err := json.Unmarshal([]byte(`{"id":"x","status":"paused"}`), &bad)
		assert.True(t, errors.Is(err, ErrStateCorrupted))
	})

	t.Run("malformed card", func(t *testing.T) {
		var bad BingoDraw
		err := json.Unmarshal([]byte(`{"id":"x","status":"running","cards":[{"id":"c","card":[1,2,3]}]}`), &bad)
		assert.True(t, errors.Is(err, ErrInvalidCard))
	})
}
