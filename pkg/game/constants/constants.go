package constants

import "time"

const (
	// MaxParticipants is the seat limit of a room
	MaxParticipants = 4
	// MinForceStartParticipants is the fewest participants an admin can start with
	MinForceStartParticipants = 2
	// DefaultStartingBalance is the balance new participants receive
	DefaultStartingBalance = 1500
	// DefaultRoomID is used when a connection does not name a room
	DefaultRoomID = "default"

	// DiceSides is the number of faces on the die
	DiceSides = 6
	// EmptyBoardWrap is the position modulus used when a board has no tiles
	EmptyBoardWrap = 12

	// RentPercent is the share of a tile's cost paid as rent
	RentPercent = 10

	// BotBuyProbability is the chance a bot buys an unowned, affordable tile
	BotBuyProbability = 0.70
	// BotIDPrefix namespaces generated bot ids
	BotIDPrefix = "bot_"
	// BotIDLength is the number of uuid characters after the prefix
	BotIDLength = 8
	// BotTurnInterval is the default period of the bot turn scheduler
	BotTurnInterval = 3 * time.Second

	// LobbyCodeMin and LobbyCodeMax bound the 6-digit lobby codes
	LobbyCodeMin = 100000
	LobbyCodeMax = 999999
	// LobbyCodeMaxAttempts bounds collision retries when creating a lobby
	LobbyCodeMaxAttempts = 1000
	// LobbyLookupTimeout bounds the best-effort lobby lookup on room creation
	LobbyLookupTimeout = 2 * time.Second

	// SimpleBoardSize is the tile count of the procedurally generated board
	SimpleBoardSize = 36
	// SimpleBoardBaseCost and SimpleBoardCostStep price the generated tiles
	SimpleBoardBaseCost = 100
	SimpleBoardCostStep = 25
)
