package game

import (
	"sync"
	"testing"

	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_Join(t *testing.T) {
	room := newTestRoom()

	res, err := room.Join(JoinRequest{Name: "Alice"})
	require.NoError(t, err)
	a := res.ParticipantID
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, res.ResumeToken)
	assert.NotEqual(t, a, res.ResumeToken)
	s := room.Snapshot()
	assert.Equal(t, a, s.AdminID)
	require.Len(t, s.Participants, 1)
	assert.Equal(t, "Alice", s.Participants[0].Name)
	assert.Equal(t, 1500, s.Participants[0].Balance)
	assert.Equal(t, types.ParticipantKindHuman, s.Participants[0].Kind)
	assert.False(t, s.Participants[0].Ready)

	// blank names fall back to a default
	b := mustJoin(t, room, "uid-b", "  ")
	assert.Equal(t, "uid-b", b)
	assert.Equal(t, "Player", participant(t, room, b).Name)
	assert.Empty(t, participant(t, room, b).ResumeToken)
	c := mustJoin(t, room, "", "")
	assert.Equal(t, "Player-"+c[:4], participant(t, room, c).Name)

	resumed, err := room.Join(JoinRequest{ResumeID: a, ResumeToken: res.ResumeToken, Name: "Other"})
	require.NoError(t, err)
	assert.True(t, resumed.Reconnected)
	assert.Equal(t, a, resumed.ParticipantID)
	assert.Equal(t, res.ResumeToken, resumed.ResumeToken)
	assert.Equal(t, "Alice", participant(t, room, a).Name)

	again, err := room.Join(JoinRequest{Identity: "uid-b"})
	require.NoError(t, err)
	assert.True(t, again.Reconnected)
	assert.Equal(t, b, again.ParticipantID)
	assert.Len(t, room.Snapshot().Participants, 3)
}

func TestRoom_JoinCannotTakeOverSeats(t *testing.T) {
	room := newTestRoom()
	alice := mustJoin(t, room, "alice", "Alice")
	bob := mustJoin(t, room, "bob", "Bob")
	anon, err := room.Join(JoinRequest{Name: "Anon"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  JoinRequest
	}{
		{name: "anonymous with an identity-bound id", req: JoinRequest{ResumeID: alice}},
		{name: "anonymous with a guessed token", req: JoinRequest{ResumeID: alice, ResumeToken: "guess"}},
		{name: "anonymous with an id and no token", req: JoinRequest{ResumeID: anon.ParticipantID}},
		{name: "anonymous with another seat's token", req: JoinRequest{ResumeID: bob, ResumeToken: anon.ResumeToken}},
		{name: "identity named like an anonymous seat", req: JoinRequest{Identity: anon.ParticipantID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := room.Join(tt.req)
			require.NoError(t, err)
			assert.False(t, res.Reconnected)
			assert.NotContains(t, []string{alice, bob, anon.ParticipantID}, res.ParticipantID)
			require.NoError(t, room.Leave(res.ParticipantID))
		})
	}

	assert.Equal(t, alice, room.Snapshot().AdminID)
	assert.ErrorIs(t, room.Kick(anon.ParticipantID, bob), ErrNotAdmin)
	assert.Len(t, room.Snapshot().Participants, 3)
}

func TestRoom_JoinFull(t *testing.T) {
	room := newTestRoom()
	var last *JoinResult
	for i := 0; i < 4; i++ {
		res, err := room.Join(JoinRequest{})
		require.NoError(t, err)
		last = res
	}

	_, err := room.Join(JoinRequest{Name: "Eve"})
	assert.ErrorIs(t, err, ErrRoomFull)

	// reconnecting to a seat still works when full
	res, err := room.Join(JoinRequest{ResumeToken: last.ResumeToken})
	require.NoError(t, err)
	assert.True(t, res.Reconnected)
	assert.Equal(t, last.ParticipantID, res.ParticipantID)
}

func TestRoom_JoinCannotClaimBot(t *testing.T) {
	room := newTestRoom()
	admin := mustJoin(t, room, "", "Admin")
	botID, err := room.AddBot(admin, "")
	require.NoError(t, err)

	for _, req := range []JoinRequest{
		{ResumeID: botID, Name: "Mallory"},
		{Identity: botID, Name: "Mallory"},
	} {
		res, err := room.Join(req)
		require.NoError(t, err)
		assert.False(t, res.Reconnected)
		assert.NotEqual(t, botID, res.ParticipantID)
	}
	assert.True(t, participant(t, room, botID).IsBot())
}

func TestRoom_PendingAdmin(t *testing.T) {
	room := newTestRoom()
	require.True(t, room.ReserveAdmin("uid-owner"))
	assert.False(t, room.ReserveAdmin("uid-other"))

	first := mustJoin(t, room, "", "First")
	assert.Equal(t, first, room.Snapshot().AdminID)

	res, err := room.Join(JoinRequest{Name: "Owner", Identity: "uid-owner"})
	require.NoError(t, err)
	s := room.Snapshot()
	assert.Equal(t, res.ParticipantID, s.AdminID)
	assert.Empty(t, s.PendingAdminIdentity)
}

func TestRoom_AddBot(t *testing.T) {
	room := newTestRoom()
	admin := mustJoin(t, room, "", "Admin")
	other := mustJoin(t, room, "", "Other")

	_, err := room.AddBot(other, "")
	assert.ErrorIs(t, err, ErrNotAdmin)

	botID, err := room.AddBot(admin, "")
	require.NoError(t, err)
	assert.Regexp(t, `^bot_[0-9a-f]{8}$`, botID)
	bot := participant(t, room, botID)
	assert.Equal(t, "Bot 1", bot.Name)
	assert.True(t, bot.Ready)
	assert.Equal(t, 1500, bot.Balance)

	named, err := room.AddBot(admin, "Robo")
	require.NoError(t, err)
	assert.Equal(t, "Robo", participant(t, room, named).Name)

	_, err = room.AddBot(admin, "")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoom_ReadyStateMachine(t *testing.T) {
	room := newTestRoom()
	ids := []string{
		mustJoin(t, room, "p1", ""),
		mustJoin(t, room, "p2", ""),
		mustJoin(t, room, "p3", ""),
	}
	for _, id := range ids {
		require.NoError(t, room.SetReady(id, true))
	}
	// three of four seats ready is not enough
	assert.Equal(t, types.RoomStatusWaiting, room.Snapshot().Status)

	p4 := mustJoin(t, room, "p4", "")
	require.NoError(t, room.SetReady(p4, true))
	s := room.Snapshot()
	assert.Equal(t, types.RoomStatusActive, s.Status)
	assert.Equal(t, "p1", s.CurrentTurn)

	require.NoError(t, room.SetReady("p2", false))
	s = room.Snapshot()
	assert.Equal(t, types.RoomStatusWaiting, s.Status)
	assert.Equal(t, "p1", s.CurrentTurn)

	assert.ErrorIs(t, room.SetReady("ghost", true), ErrNoPlayer)
}

func TestRoom_ForceStart(t *testing.T) {
	room := newTestRoom()
	admin := mustJoin(t, room, "a", "")

	assert.ErrorIs(t, room.ForceStart(admin), ErrNotEnoughPlayers)
	other := mustJoin(t, room, "b", "")
	assert.ErrorIs(t, room.ForceStart(other), ErrNotAdmin)

	require.NoError(t, room.ForceStart(admin))
	s := room.Snapshot()
	assert.Equal(t, types.RoomStatusActive, s.Status)
	assert.Equal(t, admin, s.CurrentTurn)
}

func TestRoom_Roll(t *testing.T) {
	room := newTestRoom()
	a := mustJoin(t, room, "a", "")
	b := mustJoin(t, room, "b", "")
	dice := newFixedDice(4, 5, 6)

	_, err := room.Roll(a, dice)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, room.ForceStart(a))
	_, err = room.Roll(b, dice)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = room.Roll("ghost", dice)
	assert.ErrorIs(t, err, ErrNoPlayer)

	d, err := room.Roll(a, dice)
	require.NoError(t, err)
	assert.Equal(t, 4, d)
	s := room.Snapshot()
	assert.Equal(t, 4, participant(t, room, a).Position)
	assert.Equal(t, b, s.CurrentTurn)
	require.NotNil(t, s.LastMove)
	assert.Equal(t, types.LastMove{ParticipantID: a, Dice: 4}, *s.LastMove)

	_, err = room.Roll(b, dice)
	require.NoError(t, err)
	assert.Equal(t, a, room.Snapshot().CurrentTurn)
}

func TestRoom_RoundRobin(t *testing.T) {
	const laps = 3
	room := newTestRoom()
	order := []string{
		mustJoin(t, room, "p1", ""),
		mustJoin(t, room, "p2", ""),
		mustJoin(t, room, "p3", ""),
		mustJoin(t, room, "p4", ""),
	}
	require.NoError(t, room.ForceStart(order[0]))

	for lap := 0; lap < laps; lap++ {
		seen := make(map[string]int)
		for i := range order {
			current := room.Snapshot().CurrentTurn
			require.Equal(t, order[i], current, "lap %d roll %d", lap, i)
			seen[current]++
			_, err := room.Roll(current, newFixedDice(2))
			require.NoError(t, err)
		}
		for _, id := range order {
			assert.Equal(t, 1, seen[id], "lap %d", lap)
		}
	}

	for _, id := range order {
		assert.Equal(t, 2*laps, participant(t, room, id).Position)
	}
	assert.Equal(t, order[0], room.Snapshot().CurrentTurn)
}

func TestRoom_RollWraps(t *testing.T) {
	tests := []struct {
		name  string
		board []types.Tile
		rolls []int
		want  int
	}{
		{name: "classic", board: ClassicBoard(), rolls: []int{6, 6, 6, 6, 6, 6, 6}, want: 2},
		{name: "empty board", board: nil, rolls: []int{5, 5, 5}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := NewRoom("wrap", tt.board, 1500)
			a := mustJoin(t, room, "a", "")
			mustJoin(t, room, "b", "")
			require.NoError(t, room.ForceStart(a))

			for _, roll := range tt.rolls {
				room.turnIndex, room.currentTurn = 0, a
				_, err := room.Roll(a, newFixedDice(roll))
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, participant(t, room, a).Position)
		})
	}
}

func TestRoom_Buy(t *testing.T) {
	room := newTestRoom()
	a := mustJoin(t, room, "a", "")
	b := mustJoin(t, room, "b", "")
	require.NoError(t, room.ForceStart(a))

	_, err := room.Roll(a, newFixedDice(1))
	require.NoError(t, err)

	tileID, err := room.Buy(a)
	require.NoError(t, err)
	assert.Equal(t, 1, tileID)
	assert.Equal(t, 1440, participant(t, room, a).Balance)
	assert.Equal(t, a, room.Snapshot().Board[1].OwnerID)

	_, err = room.Buy(a)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	// buying does not require the turn
	room.participants[b].Position = 39
	room.participants[b].Balance = 399
	_, err = room.Buy(b)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	room.participants[b].Balance = 400
	tileID, err = room.Buy(b)
	require.NoError(t, err)
	assert.Equal(t, 39, tileID)
	assert.Equal(t, 0, participant(t, room, b).Balance)

	empty := NewRoom("empty", nil, 1500)
	c := mustJoin(t, empty, "c", "")
	_, err = empty.Buy(c)
	assert.ErrorIs(t, err, ErrNoProperties)
}

func TestRoom_BuyRace(t *testing.T) {
	room := newTestRoom()
	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id := mustJoin(t, room, "", "")
		room.participants[id].Position = 5
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	results := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = room.Buy(id)
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyOwned)
		}
	}
	assert.Equal(t, 1, winners)

	total := 0
	for _, p := range room.Snapshot().Participants {
		total += p.Balance
	}
	assert.Equal(t, 4*1500-200, total)
}

func TestRoom_ChargeRent(t *testing.T) {
	room := newTestRoom()
	owner := mustJoin(t, room, "owner", "")
	visitor := mustJoin(t, room, "visitor", "")
	room.participants[owner].Position = 39
	_, err := room.Buy(owner)
	require.NoError(t, err)

	amount, err := room.ChargeRent(visitor, 39)
	require.NoError(t, err)
	assert.Equal(t, 40, amount)
	assert.Equal(t, 1460, participant(t, room, visitor).Balance)
	assert.Equal(t, 1100+40, participant(t, room, owner).Balance)

	amount, err = room.ChargeRent(owner, 39)
	require.NoError(t, err)
	assert.Zero(t, amount)

	amount, err = room.ChargeRent(visitor, 2)
	require.NoError(t, err)
	assert.Zero(t, amount)

	_, err = room.ChargeRent(visitor, 40)
	assert.ErrorIs(t, err, ErrInvalidTile)
	_, err = room.ChargeRent("ghost", 1)
	assert.ErrorIs(t, err, ErrNoPlayer)

	room.participants[visitor].Position = 39
	amount, err = room.ChargeCurrentRent(visitor)
	require.NoError(t, err)
	assert.Equal(t, 40, amount)

	// rent owed to a departed owner is forgiven
	require.NoError(t, room.Leave(owner))
	amount, err = room.ChargeRent(visitor, 39)
	require.NoError(t, err)
	assert.Zero(t, amount)
}

func TestRoom_SetStartingBalance(t *testing.T) {
	room := newTestRoom()
	admin := mustJoin(t, room, "a", "")
	other := mustJoin(t, room, "b", "")
	room.participants[other].Balance = 12

	assert.ErrorIs(t, room.SetStartingBalance(other, 2000), ErrNotAdmin)
	assert.ErrorIs(t, room.SetStartingBalance(admin, -1), ErrInvalidAmount)

	require.NoError(t, room.SetStartingBalance(admin, 0))
	require.NoError(t, room.SetStartingBalance(admin, 2000))
	s := room.Snapshot()
	assert.Equal(t, 2000, s.StartingBalance)
	for _, p := range s.Participants {
		assert.Equal(t, 2000, p.Balance)
	}
	assert.Equal(t, 2000, participant(t, room, mustJoin(t, room, "c", "")).Balance)
}

func TestRoom_KickAndSuccession(t *testing.T) {
	room := newTestRoom()
	a := mustJoin(t, room, "a", "")
	b := mustJoin(t, room, "b", "")
	c := mustJoin(t, room, "c", "")

	assert.ErrorIs(t, room.Kick(b, c), ErrNotAdmin)
	assert.ErrorIs(t, room.Kick(a, "ghost"), ErrNotFound)

	require.NoError(t, room.Kick(a, b))
	s := room.Snapshot()
	require.Len(t, s.Participants, 2)
	assert.Equal(t, a, s.AdminID)

	require.NoError(t, room.Leave(a))
	assert.Equal(t, c, room.Snapshot().AdminID)

	require.NoError(t, room.Leave(c))
	s = room.Snapshot()
	assert.Empty(t, s.AdminID)
	assert.Empty(t, s.Participants)
	assert.ErrorIs(t, room.Leave(c), ErrNoPlayer)
}

func TestRoom_TurnMaintenance(t *testing.T) {
	tests := []struct {
		name      string
		turn      int
		remove    string
		wantTurn  string
		wantIndex int
	}{
		{name: "remove current middle", turn: 1, remove: "b", wantTurn: "c", wantIndex: 1},
		{name: "remove current last wraps", turn: 3, remove: "d", wantTurn: "a", wantIndex: 0},
		{name: "remove before current", turn: 2, remove: "a", wantTurn: "c", wantIndex: 1},
		{name: "remove after current", turn: 1, remove: "d", wantTurn: "b", wantIndex: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom()
			for _, id := range []string{"a", "b", "c", "d"} {
				mustJoin(t, room, id, "")
			}
			require.NoError(t, room.ForceStart("a"))
			room.turnIndex = tt.turn
			room.currentTurn = room.order[tt.turn]

			require.NoError(t, room.Leave(tt.remove))
			s := room.Snapshot()
			assert.Equal(t, tt.wantTurn, s.CurrentTurn)
			assert.Equal(t, tt.wantIndex, s.TurnIndex)
		})
	}
}

func TestRoom_TurnClearedWhenEmpty(t *testing.T) {
	room := newTestRoom()
	a := mustJoin(t, room, "a", "")
	b := mustJoin(t, room, "b", "")
	require.NoError(t, room.ForceStart(a))

	require.NoError(t, room.Leave(a))
	assert.Equal(t, b, room.Snapshot().CurrentTurn)
	require.NoError(t, room.Leave(b))
	assert.Empty(t, room.Snapshot().CurrentTurn)
}

func TestRoom_SnapshotIsCopy(t *testing.T) {
	room := newTestRoom()
	a := mustJoin(t, room, "a", "")

	s := room.Snapshot()
	s.Participants[0].Balance = 1
	s.Board[1].OwnerID = a

	assert.Equal(t, 1500, participant(t, room, a).Balance)
	assert.Empty(t, room.Snapshot().Board[1].OwnerID)
}

func TestRestoreRoom(t *testing.T) {
	s := &types.RoomSnapshot{
		ID: "restored",
		Participants: []*types.Participant{
			{ID: "a", Name: "A", Position: 3, Balance: 900},
			{ID: "bot_12345678", Name: "Bot 1", Kind: types.ParticipantKindBot, Ready: true},
			{ID: "a", Name: "duplicate"},
			nil,
		},
		Status:          types.RoomStatusActive,
		AdminID:         "gone",
		StartingBalance: 1200,
		CurrentTurn:     "bot_12345678",
		LastMove:        &types.LastMove{ParticipantID: "a", Dice: 3},
	}

	room := RestoreRoom(s, ClassicBoard())
	got := room.Snapshot()
	assert.Equal(t, "restored", got.ID)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, types.ParticipantKindHuman, got.Participants[0].Kind)
	assert.Equal(t, 900, got.Participants[0].Balance)
	assert.Len(t, got.Board, 40)
	assert.Equal(t, types.RoomStatusActive, got.Status)
	assert.Empty(t, got.AdminID)
	assert.Equal(t, "bot_12345678", got.CurrentTurn)
	assert.Equal(t, 1, got.TurnIndex)
	assert.Equal(t, 1200, got.StartingBalance)
	require.NotNil(t, got.LastMove)
	assert.Equal(t, 3, got.LastMove.Dice)

	s.CurrentTurn = "gone"
	assert.Empty(t, RestoreRoom(s, nil).Snapshot().CurrentTurn)
}

func TestRestoreRoom_WrapsPositions(t *testing.T) {
	tests := []struct {
		name     string
		position int
		expected int
	}{
		{name: "in range", position: 12, expected: 12},
		{name: "past the end", position: 45, expected: 5},
		{name: "negative", position: -3, expected: 37},
		{name: "large negative", position: -83, expected: 37},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := RestoreRoom(&types.RoomSnapshot{
				ID:           "restored",
				Participants: []*types.Participant{{ID: "a", Name: "A", Position: tt.position, Balance: 5000}},
				Status:       types.RoomStatusActive,
				AdminID:      "a",
				CurrentTurn:  "a",
			}, ClassicBoard())
			assert.Equal(t, tt.expected, participant(t, room, "a").Position)

			// the board is indexable from the restored position
			tileID, err := room.Buy("a")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tileID)
			_, err = room.ChargeCurrentRent("a")
			assert.NoError(t, err)
		})
	}
}
