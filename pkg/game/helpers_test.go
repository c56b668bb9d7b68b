package game

import (
	"testing"

	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/stretchr/testify/require"
)

// fixedDice returns its values in order and repeats the last one.
type fixedDice struct {
	values []int
	i      int
}

func newFixedDice(values ...int) *fixedDice {
	return &fixedDice{values: values}
}

func (d *fixedDice) Roll() int {
	v := d.values[d.i]
	if d.i < len(d.values)-1 {
		d.i++
	}
	return v
}

type constPolicy bool

func (p constPolicy) ShouldBuy(_ types.Participant, _ types.Tile) bool {
	return bool(p)
}

func newTestRoom() *Room {
	return NewRoom("test", ClassicBoard(), 1500)
}

// mustJoin seats a participant. A non-empty identity becomes the seat id.
func mustJoin(t *testing.T, room *Room, identity string, name string) string {
	t.Helper()
	res, err := room.Join(JoinRequest{Identity: identity, Name: name})
	require.NoError(t, err)
	return res.ParticipantID
}

func participant(t *testing.T, room *Room, id string) *types.Participant {
	t.Helper()
	for _, p := range room.Snapshot().Participants {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("participant %s not found", id)
	return nil
}
