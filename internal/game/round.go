package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"partycards/internal/cards"
	"partycards/internal/players"
	"partycards/internal/rooms"
)

type SubmitResult struct {
	RoomID       string
	PlayerID     string
	AllSubmitted bool
}

type WinResult struct {
	RoomID     string
	WinnerID   string
	WinnerName string
	Score      int
	GameOver   bool
}

type RoundResult struct {
	RoomID     string
	Round      int
	Decider    bool
	GameOver   bool
	WinnerID   string
	WinnerName string
}

// StartGame deals fresh hands and opens round one.
func (e *Engine) StartGame(roomID string) error {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if room.State != rooms.StateLobby && room.State != rooms.StateGameOver {
		return ErrGameAlreadyStarted
	}
	if n := room.Players.Count(); n < e.cfg.MinPlayers {
		return fmt.Errorf("%w: need at least %d, have %d", ErrNotEnoughPlayers, e.cfg.MinPlayers, n)
	}

	hands, prompt, err := e.dealGame(room, "")
	if err != nil {
		return err
	}
	e.applyNewGame(room, hands, prompt)

	log.Info().Str("room_id", room.ID).Int("players", room.Players.Count()).Msg("game started")
	return nil
}

// dealGame draws a full hand for every seated player except skip, plus
// the first prompt, without touching the room.
func (e *Engine) dealGame(room *rooms.Room, skip string) (map[string][]cards.Response, cards.Prompt, error) {
	hands := make(map[string][]cards.Response, room.Players.Count())
	for _, p := range room.Players.List() {
		if p.ConnectionID == skip {
			continue
		}
		hand, err := e.drawResponses(e.cfg.HandSize, map[string]bool{})
		if err != nil {
			return nil, cards.Prompt{}, err
		}
		hands[p.ConnectionID] = hand
	}
	prompt, err := e.catalog.DrawPrompt()
	if err != nil {
		return nil, cards.Prompt{}, err
	}
	return hands, prompt, nil
}

func (e *Engine) applyNewGame(room *rooms.Room, hands map[string][]cards.Response, prompt cards.Prompt) {
	room.Players.ResetAll()
	for _, p := range room.Players.List() {
		p.Hand = hands[p.ConnectionID]
	}
	room.CurrentRound = 1
	room.CzarIndex = 0
	room.IsDeciderRound = false
	room.PlayerWhoLeftName = ""
	room.IsLockedForReturn = false
	e.beginRound(room, prompt)
	room.State = rooms.StatePlaying
	e.touch(room)
}

// beginRound clears the previous round and seats the czar at
// CzarIndex modulo the current player count.
func (e *Engine) beginRound(room *rooms.Room, prompt cards.Prompt) {
	room.Submissions = make(map[string][]string)
	room.WinningPlayerID = ""
	room.Players.ClearSelections()
	room.Players.AssignCzar(room.CzarIndex)
	room.CurrentPrompt = &prompt
}

// SubmitCards records a player's answer for the current prompt. A later
// submission from the same player replaces the earlier one.
func (e *Engine) SubmitCards(roomID, connID string, cardIDs []string) (SubmitResult, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return SubmitResult{}, err
	}
	defer room.Unlock()

	if room.State != rooms.StatePlaying {
		return SubmitResult{}, ErrNotPlaying
	}
	p := room.Players.Get(connID)
	if p == nil {
		return SubmitResult{}, ErrPlayerNotFound
	}
	if p.IsCzar {
		return SubmitResult{}, ErrCzarCannotSubmit
	}
	if room.CurrentPrompt == nil {
		return SubmitResult{}, ErrNoPromptCard
	}
	if err := validateSelection(p, cardIDs, room.CurrentPrompt.PickCount); err != nil {
		return SubmitResult{}, err
	}

	ids := append([]string(nil), cardIDs...)
	room.Submissions[connID] = ids
	p.SelectedCardIDs = append([]string(nil), ids...)
	all := closeSubmissions(room)
	e.touch(room)

	return SubmitResult{RoomID: room.ID, PlayerID: connID, AllSubmitted: all}, nil
}

func validateSelection(p *players.Player, cardIDs []string, pick int) error {
	if len(cardIDs) == 0 {
		return fmt.Errorf("%w: no cards selected", ErrWrongCardCount)
	}
	if len(cardIDs) != pick {
		return fmt.Errorf("%w: must submit exactly %d card(s), got %d", ErrWrongCardCount, pick, len(cardIDs))
	}
	seen := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return ErrDuplicateCards
		}
		seen[id] = true
	}
	for _, id := range cardIDs {
		if !p.HasCard(id) {
			return fmt.Errorf("%w: %s", ErrCardNotInHand, id)
		}
	}
	return nil
}

// closeSubmissions moves a Playing room to Judging once every non-czar
// player has an answer in.
func closeSubmissions(room *rooms.Room) bool {
	if len(room.Submissions) == 0 || len(room.Submissions) < room.NonCzarCount() {
		return false
	}
	room.State = rooms.StateJudging
	return true
}

// SelectWinner awards the round to winnerID.
func (e *Engine) SelectWinner(roomID, winnerID string) (WinResult, error) {
	return e.selectWinner(roomID, "", winnerID)
}

// SelectWinnerAs is SelectWinner on behalf of callerID, who must be the
// current czar.
func (e *Engine) SelectWinnerAs(roomID, callerID, winnerID string) (WinResult, error) {
	return e.selectWinner(roomID, callerID, winnerID)
}

func (e *Engine) selectWinner(roomID, callerID, winnerID string) (WinResult, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return WinResult{}, err
	}
	defer room.Unlock()

	if room.State != rooms.StateJudging {
		return WinResult{}, ErrNotJudging
	}
	if callerID != "" {
		if czar := room.Players.Czar(); czar == nil || czar.ConnectionID != callerID {
			return WinResult{}, fmt.Errorf("%w: only the czar picks the winner", ErrUnauthorized)
		}
	}
	winner := room.Players.Get(winnerID)
	if winner == nil {
		return WinResult{}, ErrPlayerNotFound
	}

	winner.Score++
	room.WinningPlayerID = winner.ConnectionID
	room.State = rooms.StateRoundOver

	res := WinResult{RoomID: room.ID, WinnerID: winner.ConnectionID, WinnerName: winner.Name, Score: winner.Score}
	switch {
	case winner.Score >= room.WinningScore:
		room.State = rooms.StateGameOver
		res.GameOver = true
	case room.IsDeciderRound:
		if _, top := room.Players.TopScorers(); len(top) == 1 {
			room.State = rooms.StateGameOver
			room.WinningPlayerID = top[0].ConnectionID
			res.GameOver = true
		}
	}
	e.touch(room)

	if res.GameOver {
		log.Info().Str("room_id", room.ID).Str("winner", winner.Name).Int("score", winner.Score).Msg("game over")
	}
	return res, nil
}

type refill struct {
	player *players.Player
	cards  []cards.Response
}

// NextRound replaces played cards and either opens the next round, opens
// a decider round on a tie for the lead, or ends the game.
func (e *Engine) NextRound(roomID string) (RoundResult, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return RoundResult{}, err
	}
	defer room.Unlock()

	if room.State != rooms.StateRoundOver {
		return RoundResult{}, ErrNotRoundOver
	}

	var refills []refill
	for _, p := range room.Players.List() {
		if p.IsCzar {
			continue
		}
		played := 0
		for _, id := range p.SelectedCardIDs {
			if p.HasCard(id) {
				played++
			}
		}
		if played == 0 {
			continue
		}
		drawn, err := e.drawResponses(played, handIDs(p.Hand))
		if err != nil {
			return RoundResult{}, err
		}
		refills = append(refills, refill{player: p, cards: drawn})
	}

	finishing := room.CurrentRound >= room.TotalRounds
	var top []*players.Player
	if finishing {
		_, top = room.Players.TopScorers()
	}
	decider := finishing && len(top) > 1

	var prompt cards.Prompt
	if !finishing || decider {
		prompt, err = e.catalog.DrawPrompt()
		if err != nil {
			return RoundResult{}, err
		}
	}

	for _, r := range refills {
		r.player.Discard(r.player.SelectedCardIDs)
		r.player.Hand = append(r.player.Hand, r.cards...)
	}
	room.Players.ClearSelections()

	res := RoundResult{RoomID: room.ID}
	switch {
	case finishing && !decider:
		room.WinningPlayerID = top[0].ConnectionID
		room.State = rooms.StateGameOver
		res.GameOver = true
		res.WinnerID = top[0].ConnectionID
		res.WinnerName = top[0].Name
		log.Info().Str("room_id", room.ID).Str("winner", top[0].Name).Msg("game over")
	case decider:
		room.IsDeciderRound = true
		room.CurrentRound++
		room.CzarIndex++
		e.beginRound(room, prompt)
		room.State = rooms.StatePlaying
		res.Decider = true
	default:
		room.IsDeciderRound = false
		room.CurrentRound++
		room.CzarIndex++
		e.beginRound(room, prompt)
		room.State = rooms.StatePlaying
	}
	res.Round = room.CurrentRound
	e.touch(room)
	return res, nil
}
