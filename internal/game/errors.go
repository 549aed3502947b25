package game

import (
	"errors"

	"partycards/internal/cards"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidRoomID      = errors.New("invalid room id")
	ErrInvalidName        = errors.New("player name is required")
	ErrAlreadyInRoom      = errors.New("connection is already in the room")
	ErrNameTaken          = errors.New("name is already taken")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrRoomFull           = errors.New("room is full")
	ErrRemovedFromGame    = errors.New("player was removed from this game")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotPlaying         = errors.New("round is not accepting submissions")
	ErrCzarCannotSubmit   = errors.New("the czar cannot submit cards")
	ErrNoPromptCard       = errors.New("no prompt card in play")
	ErrWrongCardCount     = errors.New("wrong number of cards")
	ErrDuplicateCards     = errors.New("duplicate cards in submission")
	ErrCardNotInHand      = errors.New("card is not in hand")
	ErrNotJudging         = errors.New("room is not judging")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotRoundOver       = errors.New("round is not over")
	ErrInvalidRounds      = errors.New("rounds must be at least 1")
	ErrUnauthorized       = errors.New("only the room creator can do that")
	ErrEmptyCatalog       = cards.ErrEmptyCatalog
)

var codes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "room-not-found"},
	{ErrInvalidRoomID, "invalid-room-id"},
	{ErrInvalidName, "invalid-name"},
	{ErrAlreadyInRoom, "already-in-room"},
	{ErrNameTaken, "name-taken"},
	{ErrGameAlreadyStarted, "game-already-started"},
	{ErrRoomFull, "room-full"},
	{ErrRemovedFromGame, "removed-from-game"},
	{ErrNotEnoughPlayers, "not-enough-players"},
	{ErrNotPlaying, "not-playing"},
	{ErrCzarCannotSubmit, "czar-cannot-submit"},
	{ErrNoPromptCard, "no-prompt-card"},
	{ErrWrongCardCount, "wrong-card-count"},
	{ErrDuplicateCards, "duplicate-cards"},
	{ErrCardNotInHand, "card-not-in-hand"},
	{ErrNotJudging, "not-judging"},
	{ErrPlayerNotFound, "player-not-found"},
	{ErrNotRoundOver, "not-round-over"},
	{ErrInvalidRounds, "invalid-rounds"},
	{ErrUnauthorized, "unauthorized"},
	{ErrEmptyCatalog, "empty-catalog"},
}

// Code maps an error to the stable code sent to clients. Errors outside
// the taxonomy map to "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
