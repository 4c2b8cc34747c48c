package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheAdapter "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/cache/adapter"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/database"
	queueAdapter "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/adapter"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/realtime"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/task"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/lifecycle"

	v1 "github.com/Spana-App/SPANA-SERVER-sub002/cmd/api/router/v1"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(os.Getenv("DB_URL"), os.Getenv("MIGRATIONS_PATH")); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Presence is advisory: when Redis is unreachable the server still runs,
	// identities just read as offline outside this node.
	var presence *realtime.Presence
	if cache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis unavailable, presence disabled: %v", err)
	} else {
		defer cache.Close()
		presence = realtime.NewPresence(cache)
	}

	registry := realtime.NewRegistry(presence)
	defer registry.Close()
	relay := realtime.NewRelay(registry)
	binder := lifecycle.NewBinder(relay)

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	// The task server runs embedded: audit writes and booking status events
	// are consumed by the same process that produces them.
	queueServer, err := queueAdapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}
	task.RegisterAuditTask(queueServer, pool)
	task.RegisterBookingStatusTask(queueServer, binder)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queueServer.Run(runCtx); err != nil {
			log.Printf("queue server stopped: %v", err)
		}
	}()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, queueClient, registry, relay)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-runCtx.Done()
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := queueServer.Stop(shutdownCtx); err != nil {
		log.Printf("queue shutdown error: %v", err)
	}
}
