package httpapi

import (
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryBoardNewestFirst(t *testing.T) {
	board := NewAdvisoryBoard(clockwork.NewFakeClock())

	board.Post("info", "first")
	board.Post("warning", "second")

	items := board.List()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)
	assert.Equal(t, "first", items[1].Message)
}

func TestAdvisoryBoardRetention(t *testing.T) {
	board := NewAdvisoryBoard(clockwork.NewFakeClock())

	for i := 0; i < maxAdvisories+5; i++ {
		board.Post("info", fmt.Sprintf("advisory %d", i))
	}

	items := board.List()
	require.Len(t, items, maxAdvisories)
	assert.Equal(t, fmt.Sprintf("advisory %d", maxAdvisories+4), items[0].Message)
}

func TestAdvisoryBoardListIsACopy(t *testing.T) {
	board := NewAdvisoryBoard(clockwork.NewFakeClock())
	board.Post("info", "original")

	items := board.List()
	items[0].Message = "mutated"

	assert.Equal(t, "original", board.List()[0].Message)
}
