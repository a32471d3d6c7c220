package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/billing-admin/apiclient"
	"github.com/jrsteele09/billing-admin/internal/bootstrap"
	"github.com/jrsteele09/billing-admin/internal/config"
	"github.com/jrsteele09/billing-admin/internal/obs"
	"github.com/jrsteele09/billing-admin/server"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	superviseRestarts(run, 1*time.Second)
	log.Printf("Server stopped\n")
}

// superviseRestarts calls run again after each failure until it returns cleanly
func superviseRestarts(run func() error, backoff time.Duration) {
	for {
		if err := run(); err != nil {
			log.Printf("Error running server, restarting: %s\n", err)
			time.Sleep(backoff)
		} else {
			break
		}
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	obs.ConfigureLogger(c.GetEnv())
	obs.Init()
	displayAppname(c.GetAppName())

	app, err := bootstrap.Open(context.Background(), c, apiclient.NavigatorFunc(func() {
		zlog.Warn().Msg("Session expired, the console shows the login screen")
	}))
	if err != nil {
		return fmt.Errorf("bootstrap.Open: %w", err)
	}
	defer app.Close()

	opts := make([]server.Option, 0, len(app.Checks))
	for name, check := range app.Checks {
		opts = append(opts, server.WithHealthCheck(name, check))
	}

	server := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, app.Store, app.Billing, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listenErr := make(chan error, 1)
	go func() { listenErr <- listenAndServe(server) }()

	select {
	case err := <-listenErr:
		return err
	case <-stopSignal():
	}
	returnError = shutdown(server)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
