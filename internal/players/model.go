package players

import "partycards/internal/cards"

// Player is one seat in a room. ConnectionID is rebound when the same
// person reconnects under a new connection.
type Player struct {
	ConnectionID    string           `json:"connectionId"`
	Name            string           `json:"name"`
	Color           string           `json:"color"`
	Score           int              `json:"score"`
	Hand            []cards.Response `json:"hand"`
	IsCzar          bool             `json:"isCzar"`
	SelectedCardIDs []string         `json:"selectedCardIds"`
}

// HasCard reports whether the hand holds a card with id.
func (p *Player) HasCard(id string) bool {
	for _, c := range p.Hand {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Discard removes the first hand card matching each id and returns how
// many were removed.
func (p *Player) Discard(ids []string) int {
	removed := 0
	for _, id := range ids {
		for i, c := range p.Hand {
			if c.ID == id {
				p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
				removed++
				break
			}
		}
	}
	return removed
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() Player {
	cp := *p
	cp.Hand = append([]cards.Response(nil), p.Hand...)
	cp.SelectedCardIDs = append([]string(nil), p.SelectedCardIDs...)
	return cp
}
