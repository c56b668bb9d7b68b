package game

import (
	"math/rand/v2"

	"github.com/cbodonnell/tycoon/pkg/game/constants"
	"github.com/cbodonnell/tycoon/pkg/game/types"
)

// Dice produces die values in [1, DiceSides].
type Dice interface {
	Roll() int
}

type RandomDice struct{}

func (RandomDice) Roll() int {
	return rand.IntN(constants.DiceSides) + 1
}

// BotPolicy decides whether a bot buys an unowned tile it can afford.
type BotPolicy interface {
	ShouldBuy(bot types.Participant, tile types.Tile) bool
}

type RandomBotPolicy struct {
	Probability float64
}

func NewRandomBotPolicy() RandomBotPolicy {
	return RandomBotPolicy{Probability: constants.BotBuyProbability}
}

func (p RandomBotPolicy) ShouldBuy(_ types.Participant, _ types.Tile) bool {
	return rand.Float64() < p.Probability
}

type BotTurn struct {
	BotID string
	Dice  int
	// BoughtTileID is -1 when nothing was bought
	BoughtTileID int
	RentPaid     int
}

// PlayBotTurn plays one turn if the turn pointer names a bot in an active
// room. It reports false when there was nothing to do.
func (r *Room) PlayBotTurn(dice Dice, policy BotPolicy) (*BotTurn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != types.RoomStatusActive || r.currentTurn == "" {
		return nil, false
	}
	bot, ok := r.participants[r.currentTurn]
	if !ok || !bot.IsBot() {
		return nil, false
	}

	turn := &BotTurn{BotID: bot.ID, BoughtTileID: -1}
	turn.Dice = dice.Roll()
	r.moveLocked(bot, turn.Dice, true)

	if len(r.board) > 0 {
		tile := &r.board[bot.Position%len(r.board)]
		switch {
		case tile.OwnerID == "":
			if bot.Balance >= tile.Cost && policy.ShouldBuy(*bot, *tile) {
				bot.Balance -= tile.Cost
				tile.OwnerID = bot.ID
				turn.BoughtTileID = tile.ID
			}
		case tile.OwnerID != bot.ID && bot.Balance >= tile.Rent(constants.RentPercent):
			// bots skip rent they cannot cover
			turn.RentPaid = r.chargeRentLocked(bot, tile)
		}
	}

	r.advanceTurnLocked()
	return turn, true
}
