package players

import "partycards/internal/utility"

// Roster is the ordered player list of a room. Order decides czar
// rotation. It has no lock of its own: the owning room serializes access.
type Roster struct {
	players []*Player
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Add(connID, name string) *Player {
	p := &Player{ConnectionID: connID, Name: name, Color: utility.RandomColorHex()}
	r.players = append(r.players, p)
	return p
}

func (r *Roster) Get(connID string) *Player {
	for _, p := range r.players {
		if p.ConnectionID == connID {
			return p
		}
	}
	return nil
}

func (r *Roster) FindByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// At returns the player at position i.
func (r *Roster) At(i int) *Player {
	return r.players[i]
}

func (r *Roster) List() []*Player {
	return r.players
}

func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Roster) Count() int {
	return len(r.players)
}

// Remove deletes the player and reports whether it was present.
func (r *Roster) Remove(connID string) bool {
	for i, p := range r.players {
		if p.ConnectionID == connID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// Czar returns the current czar, if any.
func (r *Roster) Czar() *Player {
	for _, p := range r.players {
		if p.IsCzar {
			return p
		}
	}
	return nil
}

// AssignCzar makes players[index % count] the only czar. The index is
// taken modulo the current count, so removals shift the rotation.
func (r *Roster) AssignCzar(index int) *Player {
	for _, p := range r.players {
		p.IsCzar = false
	}
	if len(r.players) == 0 {
		return nil
	}
	czar := r.players[index%len(r.players)]
	czar.IsCzar = true
	return czar
}

func (r *Roster) ClearCzar() {
	for _, p := range r.players {
		p.IsCzar = false
	}
}

// ResetAll zeroes scores and selections, keeping the players.
func (r *Roster) ResetAll() {
	for _, p := range r.players {
		p.Score = 0
		p.SelectedCardIDs = nil
	}
}

// ClearSelections empties every player's selected cards.
func (r *Roster) ClearSelections() {
	for _, p := range r.players {
		p.SelectedCardIDs = nil
	}
}

// TopScorers returns the highest score and every player holding it.
func (r *Roster) TopScorers() (int, []*Player) {
	best := 0
	var top []*Player
	for i, p := range r.players {
		switch {
		case i == 0 || p.Score > best:
			best = p.Score
			top = []*Player{p}
		case p.Score == best:
			top = append(top, p)
		}
	}
	return best, top
}

// Snapshot returns deep copies of every player in order.
func (r *Roster) Snapshot() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Clone())
	}
	return out
}

func (r *Roster) Clear() {
	r.players = nil
}
