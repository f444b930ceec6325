package main

import (
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/ytmusic/internal/api/connect"
	"github.com/osa030/ytmusic/internal/app/notification"
	"github.com/osa030/ytmusic/internal/app/session"
	"github.com/osa030/ytmusic/internal/infra/config"
)

// startRemote serves the remote-control service in the background.
func startRemote(cfg *config.Config, sessionMgr *session.Manager, notifications *notification.Manager) *http.Server {
	var opts []connect.HandlerOption
	if cfg.Remote.Token != "" {
		opts = append(opts, connect.WithInterceptors(apiconnect.NewTokenAuthInterceptor(cfg.Remote.Token)))
	} else {
		zlog.Warn().Msgf("remote: no token configured, anyone who can reach %s controls the player", cfg.Remote.Addr)
	}

	mux := http.NewServeMux()
	path, handler := apiconnect.NewRemoteServiceHandler(apiconnect.NewRemoteService(sessionMgr, notifications), opts...)
	mux.Handle(path, handler)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Remote.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Msgf("remote: starting server: addr=%s", cfg.Remote.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Msgf("remote: server error: %v", err)
		}
	}()

	return server
}
