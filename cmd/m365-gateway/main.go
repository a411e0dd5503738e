// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// The m365-gateway binary runs the HTTP action gateway: it builds the
// process-wide credential and API clients once, registers every action,
// and serves POST /api/invoke until a shutdown signal arrives.
package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/joho/godotenv"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"golang.org/x/oauth2"

	"github.com/garridom/m365-gateway/internal/actions"
	"github.com/garridom/m365-gateway/internal/config"
	"github.com/garridom/m365-gateway/internal/logging"
	"github.com/garridom/m365-gateway/internal/msapi"
	"github.com/garridom/m365-gateway/internal/msauth"
	"github.com/garridom/m365-gateway/internal/server"
)

func main() {
	// .env must be loaded before logging reads LOG_* from the environment,
	// and before anything logs.
	envLoaded := godotenv.Load() == nil
	logging.Initialize()
	if envLoaded {
		logging.MainLogger.Info("Loaded configuration from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.MainLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	clients, err := buildClients(cfg)
	if err != nil {
		logging.MainLogger.Error("Failed to build API clients", "error", err)
		os.Exit(1)
	}

	srv := server.New(actions.DefaultRegistry(), clients, cfg)
	run(&http.Server{Addr: cfg.HTTPAddr, Handler: srv.Router()})
}

// buildClients constructs the credential and every downstream client once;
// handlers receive them by injection.
func buildClients(cfg *config.Config) (*actions.Clients, error) {
	cred, err := msauth.NewCredential(cfg)
	if err != nil {
		return nil, err
	}

	clients := &actions.Clients{
		API:        msapi.New(cred, msapi.WithTimeout(cfg.RequestTimeout)),
		Credential: cred,
	}

	graph, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{cfg.GraphScope})
	if err != nil {
		logging.MainLogger.Warn("Graph SDK client unavailable, typed profile action disabled", "error", err)
	} else {
		clients.Graph = graph
	}

	if cfg.GitHubToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		gh := github.NewClient(oauth2.NewClient(context.Background(), src))
		if cfg.GitHubBaseURL != "" {
			base, err := url.Parse(cfg.GitHubBaseURL)
			if err != nil {
				return nil, err
			}
			gh.BaseURL = base
		}
		clients.GitHub = gh
	}

	return clients, nil
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests.
func run(httpServer *http.Server) {
	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sig
		logging.MainLogger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.MainLogger.Error("Server shutdown error", "error", err)
			os.Exit(1)
		}
		serverStopCtx()
	}()

	logging.MainLogger.Info("Gateway starting", "address", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.MainLogger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-serverCtx.Done()
	logging.MainLogger.Info("Gateway stopped")
}
