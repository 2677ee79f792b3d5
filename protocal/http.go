package protocal

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"tarot-reading/configs"
	httpAdapter "tarot-reading/internal/adapters/input/http"
	lineAdapter "tarot-reading/internal/adapters/output/line"
	"tarot-reading/internal/adapters/output/markdown"
	"tarot-reading/internal/application"
	"tarot-reading/pkg/tracing"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

const purgeInterval = 5 * time.Minute

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()
	ConfigureLogging(conf)
	logrus.Info(conf.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     conf.Tracing.Enabled,
		Endpoint:    conf.Tracing.Endpoint,
		ServiceName: conf.Tracing.ServiceName,
		Environment: conf.App.Env,
		Insecure:    conf.Tracing.Insecure,
	})
	if err != nil {
		return err
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Wire up the hexagonal architecture layers
	components, err := Build(ctx, conf)
	if err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			cancel()
			components.Close()
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := shutdownTracing(flushCtx); err != nil {
				log.Println("Error when flushing traces: ", err)
			}
			flushCancel()
			if err := app.Shutdown(); err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	go purgeExpiredSessions(ctx, components)

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(components.Tarot, markdown.NewRenderer(), components.DB, conf.Session.SecureCookie)

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)

	reading := app.Group("/v1/api")
	{
		reading.Get("/session", hdl.GetSession)
		reading.Post("/draw_card", hdl.DrawCard)
		reading.Post("/reset", hdl.Reset)
		reading.Post("/question", hdl.SetQuestion)
		reading.Post("/turns", hdl.RecordTurn)
		reading.Post("/interpret", hdl.Interpret)
	}

	if conf.Line.Enabled {
		// Output adapter (LINE client)
		lineClient, err := lineAdapter.NewLineClientAdapter(conf.Line.ChannelToken)
		if err != nil {
			logrus.Fatalf("Failed to create LINE client: %v", err)
		}
		// Application service (LINE reader use case)
		lineReader := application.NewLineReaderService(lineClient, components.Tarot)
		// Input adapter (LINE webhook handler)
		lineWebhookHdl := httpAdapter.NewLineWebhookHandler(lineReader, conf.Line.ChannelSecret)

		webhook := app.Group("/webhook")
		{
			webhook.Post("/line", lineWebhookHdl.HandleWebhook)
		}
		logrus.Info("LINE webhook enabled at /webhook/line")
	}

	logrus.Println("Listening on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}

func purgeExpiredSessions(ctx context.Context, components *Components) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := components.Store.PurgeExpired(); n > 0 {
				logrus.Debugf("Purged %d expired sessions", n)
			}
		}
	}
}
