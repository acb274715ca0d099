// Entry point: wires config, storage, repositories, handlers and routes,
// then runs the HTTP server until interrupted.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/config"
	"github.com/casedesk/casedesk/internal/database"
	"github.com/casedesk/casedesk/internal/handler"
	"github.com/casedesk/casedesk/internal/middleware"
	"github.com/casedesk/casedesk/internal/queue"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/router"
	"github.com/casedesk/casedesk/internal/storage"
	"github.com/casedesk/casedesk/internal/utils"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Close(ctx, db); err != nil {
			log.Printf("mongo close: %v", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	err = database.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	users := repository.NewUserRepo(db)
	cases := repository.NewCaseRepo(db)
	notes := repository.NewNoteRepo(db)
	speeches := repository.NewSpeechRepo(db)
	documents := repository.NewDocumentRepo(db)

	// Redis is optional: with no reachable instance the cache and the
	// rate limiter both degrade to pass-through.
	rdb := config.NewRedisClient()
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	auth := middleware.Auth(cfg.JWTSecret, users)

	authH := handler.NewAuthHandler(cfg, users, utils.GoogleVerifier{Audience: cfg.GoogleClientID})
	caseH := handler.NewCaseHandler(cases)
	noteH := handler.NewNoteHandler(notes, cases)
	speechH := handler.NewSpeechHandler(speeches, cases)
	docH := handler.NewDocumentHandler(documents, cases, files)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, files.Dir())
	router.RegisterAuth(e, authH, auth, limiter)
	router.RegisterCases(e, caseH, auth, cache)
	router.RegisterNotes(e, noteH, auth, cache)
	router.RegisterSpeeches(e, speechH, auth, cache)
	router.RegisterDocuments(e, docH, auth, cache, limiter)

	// The activity consumer drains case events into the audit log.  It
	// reconnects on its own; a missing broker only disables the log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
