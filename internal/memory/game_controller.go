package memory

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const (
	DefaultAdjudicationDelay = 650 * time.Millisecond
	DefaultTickInterval      = time.Second
)

type Config struct {
	Symbols           []entity.Symbol
	Rating            Rating
	AdjudicationDelay time.Duration
	TickInterval      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Symbols:           DefaultSymbols,
		Rating:            DefaultRating,
		AdjudicationDelay: DefaultAdjudicationDelay,
		TickInterval:      DefaultTickInterval,
	}
}

func (that Config) validate() error {
	switch {
	case that.Rating.MaxStars < 0:
		return fmt.Errorf("%w: max stars %d is negative", apperror.ErrInvalidConfig, that.Rating.MaxStars)
	case that.AdjudicationDelay < 0:
		return fmt.Errorf("%w: adjudication delay %s is negative", apperror.ErrInvalidConfig, that.AdjudicationDelay)
	case that.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval %s must be positive", apperror.ErrInvalidConfig, that.TickInterval)
	}

	return ValidateSymbols(that.Symbols)
}

type Option func(*GameController)

// WithShuffler replaces the random deck shuffle.
func WithShuffler(shuffle Shuffler) Option {
	return func(that *GameController) {
		that.shuffle = shuffle
	}
}

// GameController owns one game: deck, pending selection, stats and clock.
// Intents, clock ticks and delayed callbacks are serialized on its lock.
type GameController struct {
	logger    *slog.Logger
	conf      Config
	scheduler Scheduler
	shuffle   Shuffler
	listener  Listener

	mu         sync.Mutex
	outbox     []pendingEvent
	delivering bool
	closed     bool

	epoch     uint64
	phase     entity.Phase
	deck      *Deck
	selection *Selection
	stats     entity.GameStats
	clock     *Clock
	resolving Timer
}

func NewGameController(logger *slog.Logger, conf Config, scheduler Scheduler, listener Listener, opts ...Option) (*GameController, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}

	that := &GameController{
		logger:    logger,
		conf:      conf,
		scheduler: scheduler,
		listener:  listener,
		selection: NewSelection(),
		stats:     entity.NewGameStats(conf.Rating.MaxStars),
		phase:     entity.PhaseIdle,
	}

	for _, opt := range opts {
		opt(that)
	}

	that.clock = NewClock(serialScheduler{ctrl: that}, conf.TickInterval, that.handleTick)

	deck, err := BuildDeck(conf.Symbols, that.shuffle)
	if err != nil {
		return nil, fmt.Errorf("failed to build deck: %w", err)
	}
	that.deck = deck

	return that, nil
}

// SelectCard handles a "card chosen" intent. It reports whether the card was
// turned over; invalid targets are ignored.
func (that *GameController) SelectCard(cardID int) bool {
	var accepted bool

	that.run(func() {
		accepted = that.selectCard(cardID)
	})

	return accepted
}

// Restart discards the current game, including any pending delayed callbacks,
// and deals a freshly shuffled deck.
func (that *GameController) Restart() {
	that.run(that.restart)
}

// Close stops the clock and drops pending callbacks without dealing a new deck.
// Later intents are ignored.
func (that *GameController) Close() {
	that.run(func() {
		that.closed = true
		that.epoch++
		that.cancelResolving()
		that.clock.Stop()
		that.stats.Running = false
	})
}

func (that *GameController) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.Snapshot{
		Epoch:   that.epoch,
		Phase:   that.phase,
		Cards:   that.deck.Views(),
		Pending: that.selection.Pending(),
		Stats:   that.stats,
	}
}

func (that *GameController) Stats() entity.GameStats {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.stats
}

func (that *GameController) Phase() entity.Phase {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.phase
}

// Cards returns the deck with symbols of face-down cards included.
func (that *GameController) Cards() []entity.Card {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.deck.Cards()
}

func (that *GameController) IsOver() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.phase == entity.PhaseFinished
}

// run executes fn under the state lock and queues the events it emitted.
// Whichever caller finds no delivery in progress drains the queue in order,
// with the state lock released while the listener runs. Other callers return
// as soon as their events are queued.
func (that *GameController) run(fn func()) {
	that.mu.Lock()
	fn()

	if that.listener == nil {
		that.outbox = nil
	}

	if that.delivering || len(that.outbox) == 0 {
		that.mu.Unlock()
		return
	}

	that.delivering = true
	for len(that.outbox) > 0 {
		events := that.outbox
		that.outbox = nil
		that.mu.Unlock()

		for _, event := range events {
			deliver(that.listener, event)
		}

		that.mu.Lock()
	}
	that.delivering = false
	that.mu.Unlock()
}

func (that *GameController) selectCard(cardID int) bool {
	log := that.logger.With("method", "SelectCard", "cardID", cardID)

	card, ok := that.deck.Card(cardID)
	if !ok || that.closed || that.phase == entity.PhaseFinished || !that.selection.CanSelect(card) {
		log.Debug("selection ignored", "phase", that.phase, "closed", that.closed)
		return false
	}

	if !that.clock.Running() {
		that.clock.Start()
		that.stats.Running = true
		that.emitStats()
	}

	if err := that.selection.Select(card); err != nil {
		log.Error("failed to select card", "error", err)
		return false
	}

	that.deck.setFaceUp(cardID, true)
	that.emit(pendingEvent{kind: entity.EventCardFlipped, cardIDs: []int{cardID}, faceUp: true})
	that.phase = entity.PhaseSelecting

	if that.selection.IsFull() {
		that.adjudicate()
	}

	return true
}

func (that *GameController) adjudicate() {
	log := that.logger.With("method", "adjudicate")

	that.phase = entity.PhaseAdjudicating

	pair := that.selection.Pending()
	first, _ := that.deck.Card(pair[0])
	second, _ := that.deck.Card(pair[1])

	that.stats = RecordMove(that.stats, that.conf.Rating)
	that.emitStats()

	outcome := Adjudicate(first, second)
	log.Debug("pair adjudicated", "cards", pair, "outcome", outcome, "moves", that.stats.Moves)

	switch outcome {
	case entity.OutcomeMatch:
		that.deck.setMatched(first.ID)
		that.deck.setMatched(second.ID)
		that.emit(pendingEvent{kind: entity.EventMatch, cardIDs: pair})

		if CheckGameOver(that.deck) {
			that.finish()
		}
	case entity.OutcomeNoMatch:
		that.emit(pendingEvent{kind: entity.EventNoMatch, cardIDs: pair})
	}

	epoch := that.epoch
	that.resolving = serialScheduler{ctrl: that}.AfterFunc(that.conf.AdjudicationDelay, func() {
		if epoch != that.epoch {
			return
		}

		that.resolve(outcome, pair)
	})
}

// resolve runs once the presentation delay has elapsed.
func (that *GameController) resolve(outcome entity.Outcome, pair []int) {
	that.resolving = nil

	if outcome == entity.OutcomeNoMatch {
		for _, id := range pair {
			that.deck.setFaceUp(id, false)
			that.emit(pendingEvent{kind: entity.EventCardFlipped, cardIDs: []int{id}, faceUp: false})
		}
	}

	that.selection.Clear()

	if that.phase != entity.PhaseFinished {
		that.phase = entity.PhaseSelecting
	}
}

func (that *GameController) finish() {
	that.clock.Stop()
	that.stats.Running = false
	that.phase = entity.PhaseFinished

	that.logger.Info("game over",
		"moves", that.stats.Moves,
		"stars", that.stats.StarRating,
		"elapsed", that.stats.Elapsed(),
	)

	that.emit(pendingEvent{kind: entity.EventGameOver, stats: that.stats})
}

func (that *GameController) restart() {
	log := that.logger.With("method", "Restart")

	if that.closed {
		log.Debug("restart ignored on closed game")
		return
	}

	deck, err := BuildDeck(that.conf.Symbols, that.shuffle)
	if err != nil {
		log.Error("failed to rebuild deck", "error", err)
		return
	}

	that.epoch++
	that.cancelResolving()
	that.clock.Reset()

	that.deck = deck
	that.selection.Clear()
	that.stats = entity.NewGameStats(that.conf.Rating.MaxStars)
	that.phase = entity.PhaseIdle

	log.Debug("game restarted", "epoch", that.epoch)

	that.emit(pendingEvent{kind: entity.EventDeckBuilt, cards: deck.Cards()})
	that.emitStats()
}

func (that *GameController) handleTick(elapsed int) {
	if !that.stats.Running {
		return
	}

	that.stats.ElapsedSeconds = elapsed
	that.emitStats()
}

func (that *GameController) cancelResolving() {
	if that.resolving != nil {
		that.resolving.Stop()
		that.resolving = nil
	}
}

func (that *GameController) emitStats() {
	that.emit(pendingEvent{kind: entity.EventStatsChanged, stats: that.stats})
}

func (that *GameController) emit(event pendingEvent) {
	that.outbox = append(that.outbox, event)
}
