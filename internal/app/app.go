package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mineduel/mineduel-server/internal/broker"
	"github.com/mineduel/mineduel-server/internal/config"
	"github.com/mineduel/mineduel-server/internal/database"
	"github.com/mineduel/mineduel-server/internal/middleware"
)

type App struct {
	log        *logrus.Logger
	cfg        *config.App
	router     *http.ServeMux
	db         *pgxpool.Pool
	broker     *broker.Broker
	cookies    *config.Cookies
	jwt        *config.JWT
	ws         *config.WebSocket
	migrations fs.FS
}

func New(log *logrus.Logger, cfg *config.App, migrations fs.FS) *App {
	return &App{
		log:        log,
		cfg:        cfg,
		router:     http.NewServeMux(),
		broker:     broker.New(),
		migrations: migrations,
	}
}

func (a *App) Start(ctx context.Context) error {
	db, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	defer db.Close()

	if a.cookies, err = config.NewCookies(); err != nil {
		return err
	}
	if a.jwt, err = config.NewJWT(); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}

	a.loadRoutes()

	server := &http.Server{
		Addr: a.cfg.Addr,
		Handler: middleware.Wrap(
			a.router,
			middleware.Identity(a.log, a.cookies, a.jwt),
			middleware.Logging(a.log),
			middleware.Cors(),
		),
		ReadTimeout: time.Second * 15,
		IdleTimeout: time.Second * 60,
	}

	a.log.WithField("addr", a.cfg.Addr).Info("server listening")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
