package broadcast

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"partycards/internal/events"
	"partycards/internal/wshub"
)

// Broadcaster fans events out to room groups. A connection belongs to at
// most one group at a time.
type Broadcaster struct {
	hub *wshub.Hub

	mu     sync.Mutex
	groups map[string]map[string]bool // room id -> connection ids
	member map[string]string          // connection id -> room id
}

func NewBroadcaster(hub *wshub.Hub) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		groups: make(map[string]map[string]bool),
		member: make(map[string]string),
	}
}

// Join puts connID in roomID's group, leaving any previous group.
func (b *Broadcaster) Join(roomID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaveLocked(connID)
	g, ok := b.groups[roomID]
	if !ok {
		g = make(map[string]bool)
		b.groups[roomID] = g
	}
	g[connID] = true
	b.member[connID] = roomID
}

// Leave removes connID from its group and returns the room it was in.
func (b *Broadcaster) Leave(connID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.leaveLocked(connID)
}

func (b *Broadcaster) leaveLocked(connID string) string {
	roomID, ok := b.member[connID]
	if !ok {
		return ""
	}
	delete(b.member, connID)
	if g := b.groups[roomID]; g != nil {
		delete(g, connID)
		if len(g) == 0 {
			delete(b.groups, roomID)
		}
	}
	return roomID
}

// RoomOf returns the room connID is grouped under, or "".
func (b *Broadcaster) RoomOf(connID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.member[connID]
}

// Members lists a group's connections in sorted order.
func (b *Broadcaster) Members(roomID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.groups[roomID]))
	for id := range b.groups[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DropGroup forgets roomID's group and returns its former members.
func (b *Broadcaster) DropGroup(roomID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.groups[roomID]
	delete(b.groups, roomID)
	ids := make([]string, 0, len(g))
	for id := range g {
		if b.member[id] == roomID {
			delete(b.member, id)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Groups lists the room ids that have at least one member.
func (b *Broadcaster) Groups() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.groups))
	for id := range b.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToConn sends one event to a single connection.
func (b *Broadcaster) ToConn(connID, eventType string, payload any) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		log.Error().Err(err).Msg("broadcast encode failed")
		return
	}
	b.hub.Send(connID, data)
}

// ToRoom sends one event to every member of roomID's group.
func (b *Broadcaster) ToRoom(roomID, eventType string, payload any) {
	b.ToRoomExcept(roomID, "", eventType, payload)
}

// ToRoomExcept is ToRoom skipping one connection.
func (b *Broadcaster) ToRoomExcept(roomID, exceptID, eventType string, payload any) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		log.Error().Err(err).Msg("broadcast encode failed")
		return
	}
	for _, id := range b.Members(roomID) {
		if id == exceptID {
			continue
		}
		b.hub.Send(id, data)
	}
}

// RoomDeleted tells the group its room is gone and drops the group.
func (b *Broadcaster) RoomDeleted(roomID, reason string) {
	b.ToRoom(roomID, events.RoomDeleted, events.ReasonPayload{RoomID: roomID, Reason: reason})
	b.DropGroup(roomID)
}

// Evict tells the listed connections their room is gone and ungroups
// them. Connections that have since moved to another group, or joined a
// newer room under the same id without being listed, are left alone.
func (b *Broadcaster) Evict(roomID string, connIDs []string, reason string) {
	data, err := events.Encode(events.RoomDeleted, events.ReasonPayload{RoomID: roomID, Reason: reason})
	if err != nil {
		log.Error().Err(err).Msg("broadcast encode failed")
		return
	}

	b.mu.Lock()
	evicted := make([]string, 0, len(connIDs))
	for _, id := range connIDs {
		if b.member[id] != roomID {
			continue
		}
		b.leaveLocked(id)
		evicted = append(evicted, id)
	}
	b.mu.Unlock()

	for _, id := range evicted {
		b.hub.Send(id, data)
	}
}

// IdleWarning tells the group how long until the room is reaped.
func (b *Broadcaster) IdleWarning(roomID string, secondsRemaining int) {
	b.ToRoom(roomID, events.RoomIdleWarning, events.IdleWarningPayload{
		RoomID:           roomID,
		SecondsRemaining: secondsRemaining,
	})
}
