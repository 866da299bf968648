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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hhq160325/EjswebsiteSDN/internal/config"
	"github.com/hhq160325/EjswebsiteSDN/internal/es"
	"github.com/hhq160325/EjswebsiteSDN/internal/handlers"
	"github.com/hhq160325/EjswebsiteSDN/internal/logging"
	loggingmw "github.com/hhq160325/EjswebsiteSDN/internal/middleware/logging"
	"github.com/hhq160325/EjswebsiteSDN/internal/mykafka"
	httpserver "github.com/hhq160325/EjswebsiteSDN/internal/transport/http"
	"github.com/hhq160325/EjswebsiteSDN/internal/upload"
	"github.com/hhq160325/EjswebsiteSDN/internal/web"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.SESSION_SECRET, "SESSION_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	sessionSecret := []byte(configuration.SESSION_SECRET)

	prod := mykafka.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))

	uploads, err := upload.NewStorage(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatalf("upload dir error: %v", err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("template error: %v", err)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:              db,
		JWTSecret:       jwtSecret,
		SessionSecret:   sessionSecret,
		UploadDir:       configuration.UPLOAD_DIR,
		UserHandler:     &handlers.UserHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		CategoryHandler: &handlers.CategoryHandler{DB: db, Producer: prod},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod, Uploads: uploads},
		WebHandler:      &web.Handler{DB: db, JWTSecret: jwtSecret, Uploads: uploads},
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		deps.SearchHandler = handlers.NewSearchHandler(esClient, "product")
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
