package protocal

import (
	"context"
	"fmt"
	"time"

	"tarot-reading/configs"
	"tarot-reading/internal/adapters/output/cards"
	"tarot-reading/internal/adapters/output/gemini"
	"tarot-reading/internal/adapters/output/lmstudio"
	"tarot-reading/internal/adapters/output/memory"
	"tarot-reading/internal/adapters/output/postgres"
	"tarot-reading/internal/application"
	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"
	"tarot-reading/pkg/database_driver/gorm"

	"github.com/sirupsen/logrus"
	gormio "gorm.io/gorm"
)

// Defaults applied when the config leaves a value at zero
const (
	defaultSessionTimeout = 30 * time.Minute
	defaultModelTimeout   = 60 * time.Second
)

// Components holds the wired reading core shared by the HTTP server and the CLI
type Components struct {
	Deck  *domain.Deck
	Store *memory.MemorySessionStore
	Tarot *application.TarotService
	// DB is set only when the deck is served from postgres
	DB *gormio.DB
}

// Close releases the database connection, if any
func (c *Components) Close() {
	if c.DB != nil {
		gorm.DisconnectPostgres(c.DB)
	}
}

// ConfigureLogging sets the logrus level from app.debug
func ConfigureLogging(cfg *configs.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}

// Build loads the deck and wires store, model client and services
func Build(ctx context.Context, cfg *configs.Config) (*Components, error) {
	source, db, err := newCardSource(cfg)
	if err != nil {
		return nil, err
	}
	c := &Components{DB: db}

	loaded, err := source.LoadCards(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	deck, err := domain.NewDeck(loaded)
	if err != nil {
		c.Close()
		return nil, err
	}
	logrus.Infof("Deck loaded from %s source: %d cards", deckSource(cfg), deck.Size())

	model, err := newModelClient(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	sessionTimeout := time.Duration(cfg.Session.Timeout) * time.Minute
	if sessionTimeout <= 0 {
		sessionTimeout = defaultSessionTimeout
	}
	modelTimeout := time.Duration(cfg.LLM.Timeout) * time.Second
	if modelTimeout <= 0 {
		modelTimeout = defaultModelTimeout
	}

	c.Deck = deck
	c.Store = memory.NewMemorySessionStore(sessionTimeout)
	interp := application.NewInterpretationService(model, modelTimeout)
	c.Tarot = application.NewTarotService(deck, c.Store, interp, nil)
	return c, nil
}

func deckSource(cfg *configs.Config) string {
	if cfg.Deck.Source == "" {
		return "embedded"
	}
	return cfg.Deck.Source
}

func newCardSource(cfg *configs.Config) (output.CardSource, *gormio.DB, error) {
	switch deckSource(cfg) {
	case "embedded":
		return cards.NewEmbeddedSource(), nil, nil
	case "file":
		if cfg.Deck.Path == "" {
			return nil, nil, fmt.Errorf("%w: deck.path is required for the file source", domain.ErrDataLoad)
		}
		return cards.NewFileSource(cfg.Deck.Path), nil, nil
	case "postgres":
		dbConGorm, err := gorm.ConnectToPostgreSQL(
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.Username,
			cfg.Postgres.Password,
			cfg.Postgres.DbName,
			cfg.Postgres.SSLMode,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
		}
		var seed output.CardSource
		if cfg.Deck.Seed {
			seed = cards.NewEmbeddedSource()
		}
		repo, err := postgres.NewCardRepository(dbConGorm.Postgres, seed)
		if err != nil {
			gorm.DisconnectPostgres(dbConGorm.Postgres)
			return nil, nil, err
		}
		return repo, dbConGorm.Postgres, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown deck source %q", domain.ErrDataLoad, cfg.Deck.Source)
	}
}

func newModelClient(cfg *configs.Config) (output.ModelClient, error) {
	switch cfg.LLM.Provider {
	case "", "lmstudio":
		return lmstudio.NewLMStudioClientAdapter(cfg.LMStudio)
	case "gemini":
		return gemini.NewGeminiClientAdapter(cfg.Gemini, cfg.LMStudio.SystemPrompt)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
