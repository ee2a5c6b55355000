package server

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-live/internal/game"
	"github.com/lox/holdem-live/internal/gameid"
)

// GameManager owns one hub (engine plus action pipeline) per game id.
// The registry lock only guards the map; per-game work happens behind
// each hub's own lock, so independent games never contend.
type GameManager struct {
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand
	rngMu  sync.Mutex

	gameConfig    game.Config
	aiActionDelay time.Duration
	stepTimeout   time.Duration

	mu    sync.RWMutex
	games map[string]*Hub
}

// NewGameManager constructs an empty registry. The RNG seeds each game's
// engine deterministically when the caller seeds it.
func NewGameManager(logger *log.Logger, clock quartz.Clock, rng *rand.Rand, cfg game.Config, aiActionDelay, stepTimeout time.Duration) *GameManager {
	return &GameManager{
		logger:        logger.With("component", "game_manager"),
		clock:         clock,
		rng:           rng,
		gameConfig:    cfg,
		aiActionDelay: aiActionDelay,
		stepTimeout:   stepTimeout,
		games:         make(map[string]*Hub),
	}
}

// CreateGame instantiates an engine and its pipeline entry. No hand is
// started; the first WebSocket connection bootstraps play.
func (gm *GameManager) CreateGame(playerName string, aiCount int) (*Hub, error) {
	gm.rngMu.Lock()
	seed := gm.rng.Int63()
	gm.rngMu.Unlock()

	gameRNG := rand.New(rand.NewSource(seed))
	engine, err := game.NewGame(playerName, aiCount, gm.gameConfig, gameRNG, gm.logger)
	if err != nil {
		return nil, err
	}

	id := gameid.Generate()
	hub := NewHub(id, engine, gm.logger, gm.clock, gm.aiActionDelay, gm.stepTimeout)

	gm.mu.Lock()
	gm.games[id] = hub
	gm.mu.Unlock()

	gm.logger.Info("game created", "game_id", id, "player", playerName, "ai_count", aiCount)
	return hub, nil
}

// GetGame retrieves a hub by id
func (gm *GameManager) GetGame(id string) (*Hub, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	hub, ok := gm.games[id]
	return hub, ok
}

// ReleaseObserver removes an observer from its game and tears the game
// down once the last observer has left.
func (gm *GameManager) ReleaseObserver(hub *Hub, o *observer) {
	if hub.RemoveObserver(o) > 0 {
		return
	}

	gm.mu.Lock()
	delete(gm.games, hub.ID)
	gm.mu.Unlock()
	gm.logger.Info("last observer left, game torn down", "game_id", hub.ID)
}

// GameCount returns the number of registered games
func (gm *GameManager) GameCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// ValidateCreateRequest rejects out-of-range game creation parameters before they
// reach the engine.
func ValidateCreateRequest(playerName string, aiCount int) error {
	if playerName == "" {
		return fmt.Errorf("player_name is required")
	}
	if aiCount < 1 || aiCount > 3 {
		return fmt.Errorf("ai_count must be between 1 and 3, got %d", aiCount)
	}
	return nil
}
