package analytics

import (
	"time"

	"partycards/internal/db"
)

type BadgeID string

const (
	BadgeLandslide   BadgeID = "landslide"
	BadgeClutch      BadgeID = "clutch"
	BadgeUnstoppable BadgeID = "unstoppable"
	BadgeVeteran     BadgeID = "veteran"
	BadgeChampion    BadgeID = "champion"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeLandslide:   {ID: BadgeLandslide, Name: "Landslide", Description: "Won a game by 3+ points", Icon: "🏔️"},
	BadgeClutch:      {ID: BadgeClutch, Name: "Clutch", Description: "Won a decider round", Icon: "🎯"},
	BadgeUnstoppable: {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-game win streak", Icon: "🔥"},
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ games", Icon: "🏅"},
	BadgeChampion:    {ID: BadgeChampion, Name: "Champion", Description: "Won 5+ games", Icon: "👑"},
}

// EvaluateGameBadges checks which badges a player earned in a single game.
func EvaluateGameBadges(stats PlayerGameStats) []Badge {
	if stats.Rank != 1 {
		return nil
	}
	var earned []Badge

	if stats.Margin >= 3 {
		earned = append(earned, AllBadges[BadgeLandslide])
	}

	// Only a decider with a sole winner counts
	if stats.Decider && stats.Margin > 0 {
		earned = append(earned, AllBadges[BadgeClutch])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	if stats.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	if stats.WinCount >= 5 {
		earned = append(earned, AllBadges[BadgeChampion])
	}

	return earned
}

// EarnedBadge is a stored award joined with its catalog entry.
type EarnedBadge struct {
	Badge
	GameID    string    `json:"gameId,omitempty"`
	AwardedAt time.Time `json:"awardedAt"`
}

// ResolveBadges maps stored awards onto the badge catalog in award order.
// Ids the catalog no longer knows are dropped.
func ResolveBadges(awards []db.BadgeAward) []EarnedBadge {
	earned := make([]EarnedBadge, 0, len(awards))
	for _, a := range awards {
		b, ok := AllBadges[BadgeID(a.BadgeID)]
		if !ok {
			continue
		}
		earned = append(earned, EarnedBadge{Badge: b, GameID: a.GameID, AwardedAt: a.AwardedAt})
	}
	return earned
}
