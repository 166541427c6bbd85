package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spx/internal/auth"
	"github.com/desertthunder/spx/internal/server"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the PKCE authorization flow.
//
// Starts a local HTTP server on the configured callback address, opens the
// browser for user consent, and waits for the redirect to complete the code
// exchange. Tokens land in the credential store, never in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	oauthCfg, err := r.oauthConfig()
	if err != nil {
		return err
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	flow := auth.NewFlow(oauthCfg, store, r.logger)

	authURL, state, err := flow.Begin()
	if err != nil {
		return fmt.Errorf("failed to start authorization: %w", err)
	}

	handler := server.NewCallbackHandler(flow, state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening for callback at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Credentials == nil {
		return fmt.Errorf("no credentials received")
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token valid until %s\n\n", result.Credentials.Expiry.Format(time.Kitchen))
	r.writePlain("You can now use: spx playlists list\n")

	return nil
}

// AuthStatus reports the state of the stored credential record.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	creds, err := store.Credentials()
	if err != nil {
		return fmt.Errorf("failed to read credential store: %w", err)
	}

	if creds == nil || creds.AccessToken == "" {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run: spx auth login\n")
		return nil
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("Token expires: %s\n", creds.Expiry.Format(time.RFC1123))

	session, err := r.openSession()
	if err != nil {
		return err
	}

	if session.Expired(creds) {
		if creds.RefreshToken != "" {
			r.writePlain("State: expired, will refresh on next request\n")
		} else {
			r.writePlain("State: expired, no refresh token, run: spx auth login\n")
		}
	} else {
		r.writePlain("State: fresh\n")
	}

	return nil
}

// AuthLogout clears the stored credential record.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.logger.Info("credentials cleared")
	r.writePlain("✓ Logged out\n")

	return nil
}
