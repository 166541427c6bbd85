package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/auth"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The credential store and Spotify services are opened lazily so commands
// that never touch the API (setup, help) do not require a configured client.
type Runner struct {
	config     *shared.Config
	configPath string
	store      auth.Store
	session    *auth.Session
	spotify    services.Service
	player     services.Player
	sp         *services.SpotifyService
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store, Spotify, Player, and API allow tests to inject fakes; when left nil
// they are built on first use from the config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      auth.Store
	Spotify    services.Service
	Player     services.Player
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		spotify:    opts.Spotify,
		player:     opts.Player,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// Close releases the credential store if one was opened.
func (r *Runner) Close() error {
	if store, ok := r.store.(*auth.BoltStore); ok {
		return store.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, libraryCommand, searchCommand,
		releasesCommand, playerCommand, exportCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// oauthConfig builds the provider OAuth2 configuration from the loaded config.
func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	if r.config.Credentials.Spotify.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id must be set in %s or SPX_CLIENT_ID", shared.ErrMissingCredentials, r.configPath)
	}

	return &oauth2.Config{
		ClientID:    r.config.Credentials.Spotify.ClientID,
		RedirectURL: r.config.Credentials.Spotify.RedirectURI,
		Scopes:      r.config.Credentials.Spotify.Scopes,
		Endpoint:    spotify.Endpoint,
	}, nil
}

// openStore returns the credential store, opening the bolt file on first use.
func (r *Runner) openStore() (auth.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	path := r.config.Auth.StorePath
	if path == "" {
		dir, err := shared.DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "auth.db")
	}

	store, err := auth.OpenBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	r.store = store
	return store, nil
}

// openSession returns the token session over the credential store.
func (r *Runner) openSession() (*auth.Session, error) {
	if r.session != nil {
		return r.session, nil
	}

	oauthCfg, err := r.oauthConfig()
	if err != nil {
		return nil, err
	}

	store, err := r.openStore()
	if err != nil {
		return nil, err
	}

	r.session = auth.NewSession(oauthCfg, store, r.logger)
	return r.session, nil
}

// openSpotify wires the Spotify service over an authenticated HTTP client.
//
// The client routes through the retrying bearer transport, so service calls
// never handle tokens themselves.
func (r *Runner) openSpotify() (services.Service, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	session, err := r.openSession()
	if err != nil {
		return nil, err
	}

	client := auth.NewTransport(session).Client()
	svc := services.NewSpotifyService(client, r.logger)

	r.sp = svc
	r.spotify = svc
	r.player = svc
	if r.api == nil {
		r.api = services.NewAPIService("", client)
	}

	return r.spotify, nil
}

// openPlayer returns the playback controller.
func (r *Runner) openPlayer() (services.Player, error) {
	if r.player != nil {
		return r.player, nil
	}
	if _, err := r.openSpotify(); err != nil {
		return nil, err
	}
	if r.player == nil {
		return nil, fmt.Errorf("%w: playback controller not initialized", shared.ErrServiceUnavailable)
	}
	return r.player, nil
}

// openAPI returns the raw API client for the api command.
func (r *Runner) openAPI() (*services.APIService, error) {
	if r.api != nil {
		return r.api, nil
	}
	if _, err := r.openSpotify(); err != nil {
		return nil, err
	}
	if r.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	return r.api, nil
}

// concrete returns the full Spotify service for commands that need endpoints
// beyond the Service interface.
func (r *Runner) concrete() (*services.SpotifyService, error) {
	if r.sp != nil {
		return r.sp, nil
	}
	if sp, ok := r.spotify.(*services.SpotifyService); ok {
		r.sp = sp
		return sp, nil
	}
	if _, err := r.openSpotify(); err != nil {
		return nil, err
	}
	if r.sp == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	return r.sp, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
