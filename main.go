// Package main Biblioteca API.
//
// @title           Biblioteca API
// @version         1.0
// @description     Library management: books, categories, patrons and loans.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer"
	authctrl "github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/auth"
	bookctrl "github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/book"
	categoryctrl "github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/category"
	loanctrl "github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/loan"
	userctrl "github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/user"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/validation"
	"github.com/MANUEL666GAMER/Biblioteca/config"
	_ "github.com/MANUEL666GAMER/Biblioteca/docs"
	"github.com/MANUEL666GAMER/Biblioteca/repository/activity"
	authrepo "github.com/MANUEL666GAMER/Biblioteca/repository/auth"
	bookrepo "github.com/MANUEL666GAMER/Biblioteca/repository/book"
	categoryrepo "github.com/MANUEL666GAMER/Biblioteca/repository/category"
	"github.com/MANUEL666GAMER/Biblioteca/repository/image"
	loanrepo "github.com/MANUEL666GAMER/Biblioteca/repository/loan"
	userrepo "github.com/MANUEL666GAMER/Biblioteca/repository/user"
	authsvc "github.com/MANUEL666GAMER/Biblioteca/service/auth"
	booksvc "github.com/MANUEL666GAMER/Biblioteca/service/book"
	categorysvc "github.com/MANUEL666GAMER/Biblioteca/service/category"
	loansvc "github.com/MANUEL666GAMER/Biblioteca/service/loan"
	usersvc "github.com/MANUEL666GAMER/Biblioteca/service/user"
	"github.com/MANUEL666GAMER/Biblioteca/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: pgx pool + *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	journal := openJournal(ctx, cfg, log)
	defer journal.Close()

	images, err := image.NewDiskStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Error("upload dir unavailable", "err", err)
		os.Exit(1)
	}

	// repos
	ar := authrepo.New(db.SQL)
	br := bookrepo.New(db.SQL)
	cr := categoryrepo.New(db.SQL)
	ur := userrepo.New(db.SQL)
	lr := loanrepo.New(db.SQL)

	// services
	as := authsvc.New(ar, cfg.JWTSecret, cfg.JWTTTL)
	bs := booksvc.New(br, images)
	cs := categorysvc.New(cr)
	us := usersvc.New(ur)
	ls := loansvc.New(lr, journal, log)

	// controllers
	v := validation.NewEngine()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log, cfg.CORSOrigins)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			log.Error("health check failed", "err", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "down",
				"message": "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static(image.PublicPrefix, cfg.UploadDir)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Category: categoryC,
		User:     userC,
		Loan:     loanC,

		JWTSecret: cfg.JWTSecret,
	})

	log.Info("starting server", "port", cfg.Port, "env", cfg.Env)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server exited")
}

// openJournal prefers ClickHouse and falls back to memory when it is not
// configured or cannot be reached.
func openJournal(ctx context.Context, cfg config.App, log *slog.Logger) activity.Journal {
	if cfg.ClickHouse.Host == "" {
		return activity.NewMemoryJournal()
	}
	ch, err := activity.NewClickHouseJournal(ctx, activity.ClickHouseOptions{
		Host:     cfg.ClickHouse.Host,
		Port:     cfg.ClickHouse.Port,
		Database: cfg.ClickHouse.Database,
		User:     cfg.ClickHouse.User,
		Password: cfg.ClickHouse.Password,
		UseTLS:   cfg.ClickHouse.UseTLS,
	})
	if err == nil {
		err = ch.Initialize(ctx)
	}
	if err != nil {
		log.Warn("clickhouse unavailable, loan activity kept in memory", "err", err)
		if ch != nil {
			_ = ch.Close()
		}
		return activity.NewMemoryJournal()
	}
	log.Info("loan activity journal on clickhouse", "host", cfg.ClickHouse.Host)
	return ch
}
