package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"partycards/internal/analytics"
	"partycards/internal/cards"
	"partycards/internal/config"
	"partycards/internal/db"
	"partycards/internal/game"
	"partycards/internal/leaderboard"
	"partycards/internal/logging"
	"partycards/internal/reaper"
	"partycards/internal/rooms"
)

// Routes builds the HTTP surface: the WebSocket gateway, admin, stats,
// health and metrics.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ws", s.handleWS).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", s.Metrics.Handler()).Methods("GET")

	stats := r.PathPrefix("/stats").Subrouter()
	stats.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")
	stats.HandleFunc("/players/{name}", s.handlePlayerStats).Methods("GET")
	stats.HandleFunc("/games/{id}", s.handleGameRecap).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	admin.HandleFunc("/rooms/clear", s.handleClearRooms).Methods("POST")
	admin.HandleFunc("/rooms/{id}/delete", s.handleDeleteRoom).Methods("POST")
	admin.HandleFunc("/cards", s.handleGetCards).Methods("GET")
	admin.HandleFunc("/cards", s.handleReplaceCards).Methods("POST")

	return r
}

func Run() error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(appCfg.LogLevel, appCfg.LogPretty)

	catalog, err := cards.LoadDir(appCfg.CardsDir)
	if err != nil {
		return fmt.Errorf("loading cards: %w", err)
	}
	nPrompts, nResponses := catalog.Counts()
	log.Info().Int("prompts", nPrompts).Int("responses", nResponses).Str("dir", appCfg.CardsDir).Msg("cards loaded")

	format, err := game.ParseIDFormat(appCfg.RoomIDFormat)
	if err != nil {
		return err
	}
	roomStore := rooms.NewStore(rooms.Defaults{
		MaxPlayers:   appCfg.MaxPlayers,
		WinningScore: appCfg.WinningScore,
		TotalRounds:  appCfg.DefaultRounds,
	}, time.Now)
	engine := game.NewEngine(roomStore, catalog, game.Config{
		RoomIDFormat: format,
		HandSize:     appCfg.HandSize,
		MinPlayers:   appCfg.MinPlayers,
	})
	srv := NewServer(appCfg, engine, catalog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Str("component", "db").Msg("failed to connect, running without database")
		} else {
			if err := database.Migrate(); err != nil {
				log.Error().Err(err).Str("component", "db").Msg("migration failed")
			}
			defer database.Close()
			srv.DB = database
			srv.Queries = analytics.NewQueries(database)
		}
	} else {
		log.Info().Str("component", "db").Msg("DATABASE_URL not set, running without database")
	}

	// Optional redis leaderboard
	if appCfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := leaderboard.Connect(pingCtx, appCfg.RedisAddr)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("component", "redis").Msg("failed to connect, running without leaderboard")
		} else {
			defer client.Close()
			srv.Leaderboard = leaderboard.New(client, leaderboard.DefaultKey)
		}
	}

	if srv.Queries != nil || srv.Leaderboard != nil {
		srv.History = make(chan finishedGame, historyBuffer)
		go srv.historyWriter(ctx)
	}

	idle := reaper.New(roomStore, srv.Broadcaster, reaper.NewPolicy(appCfg.SweepInterval, appCfg.IdleTimeout, appCfg.IdleWarning))
	idle.OnSweep = func(res reaper.SweepResult) {
		srv.Metrics.RoomsReaped.Add(float64(res.Deleted))
	}
	go idle.Run(ctx)

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + appCfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", appCfg.Port).Msg("server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
