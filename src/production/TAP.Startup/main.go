package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/maplesense1/tap.queue_server/src/production/TAP.ApiService/controllers"
	container "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Container"
	coordinator "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Coordinator"
	devicelink "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.DeviceLink"
	queue "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Queue"
	implementation "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Implementation"
	session "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Session"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown()

	log := ctr.GetLogger()
	log.Info("Starting Tap Queue Server")

	cfg := ctr.GetConfig()
	ctx := context.Background()

	if err := ctr.ConnectDatabase(ctx); err != nil {
		log.FatalWithError(err, "Failed to connect to database")
	}
	db := ctr.GetDB()

	// Repositories
	tapRepo := implementation.NewPostgresTapRepository(db)
	userRepo := implementation.NewPostgresUserRepository(db)
	sessionRepo := implementation.NewPostgresSessionRepository(db)

	// The topic table must exist before the telemetry subscription
	taps, err := tapRepo.ListTaps(ctx)
	if err != nil {
		log.FatalWithError(err, "Failed to load tap registry")
	}
	topics := make(map[string]string, len(taps))
	for _, tap := range taps {
		topics[tap.TapID] = tap.Topic
	}
	table := devicelink.NewTopicTable(topics)
	log.WithField("taps", len(taps)).Info("tap registry loaded")

	// Coordination core
	queues := queue.NewStore()
	tracker := session.NewTracker(sessionRepo, userRepo, log)
	notifier := coordinator.NewNotifier()

	// The link and the coordinator reference each other; the link gets
	// its handler before Start so no telemetry arrives unhandled
	handler := &telemetryHandler{}
	link := devicelink.New(cfg.MQTT, table, handler, log)

	coord := coordinator.New(cfg.Watchdog, queues, tracker, link, notifier, log)
	handler.coord = coord
	defer coord.Shutdown()

	// No working device link, no service
	if err := link.Start(); err != nil {
		log.FatalWithError(err, "Failed to start device link")
	}
	defer link.Stop()

	// HTTP API
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	controllers.NewQueueController(coord, userRepo, log).RegisterRoutes(router)
	controllers.NewHistoryController(sessionRepo, log).RegisterRoutes(router)
	controllers.NewTapController(tapRepo, log).RegisterRoutes(router)
	controllers.NewUserController(userRepo, log).RegisterRoutes(router)
	controllers.NewHealthController(db, link).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.FatalWithError(err, "HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithError(err, "HTTP server shutdown failed")
	}
}

// telemetryHandler breaks the construction cycle between the device
// link and the coordinator
type telemetryHandler struct {
	coord *coordinator.Coordinator
}

func (h *telemetryHandler) HandleAmount(tapID string, amount float64) {
	h.coord.HandleAmount(tapID, amount)
}

func (h *telemetryHandler) HandleStatus(tapID string, status string) {
	h.coord.HandleStatus(tapID, status)
}
