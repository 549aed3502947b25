package analytics

import "time"

type PlayerGameStats struct {
	PlayerName  string
	PlayerColor string
	GameID      string
	Score       int
	Rank        int
	Margin      int // lead over the runner-up, winners only
	Decider     bool
}

type PlayerLifetimeStats struct {
	PlayerName  string
	PlayerColor string
	GamesPlayed int
	TotalScore  int
	BestGame    int
	WinCount    int
	WinStreak   int
	Badges      []EarnedBadge
}

type LeaderboardEntry struct {
	PlayerName  string
	PlayerColor string
	Value       int
	Rank        int
}

type GameRecap struct {
	GameID       string
	RoomID       string
	TotalRounds  int
	RoundsPlayed int
	Decider      bool
	WinnerName   string
	EndedAt      time.Time
	Players      []PlayerGameStats
}
