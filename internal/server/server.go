package server

import (
	"partycards/internal/analytics"
	"partycards/internal/broadcast"
	"partycards/internal/cards"
	"partycards/internal/config"
	"partycards/internal/db"
	"partycards/internal/game"
	"partycards/internal/leaderboard"
	"partycards/internal/metrics"
	"partycards/internal/rooms"
	"partycards/internal/wshub"
)

type Server struct {
	Config      config.Config
	Engine      *game.Engine
	Store       *rooms.Store
	Catalog     *cards.Catalog
	Hub         *wshub.Hub
	Broadcaster *broadcast.Broadcaster
	Metrics     *metrics.Metrics

	DB          *db.DB                   // nil if no database configured
	Queries     *analytics.Queries       // nil if no database configured
	Leaderboard *leaderboard.Leaderboard // nil if no redis configured
	History     chan finishedGame        // nil if neither is configured
}

// NewServer wires the transport around an engine. Storage backends are
// attached afterwards by Run.
func NewServer(cfg config.Config, engine *game.Engine, catalog *cards.Catalog) *Server {
	hub := wshub.NewHub()
	store := engine.Store()
	return &Server{
		Config:      cfg,
		Engine:      engine,
		Store:       store,
		Catalog:     catalog,
		Hub:         hub,
		Broadcaster: broadcast.NewBroadcaster(hub),
		Metrics:     metrics.New(store.Count),
	}
}
