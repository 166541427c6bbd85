// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the credential lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using the PKCE flow",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored credential state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistsCommand handles playlist operations.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "add",
				Usage: "Add tracks to a playlist by URI",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to add tracks to",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "uri",
						Usage:    "Track URI (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "export",
				Usage: "Export a playlist with all tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON to stdout",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// libraryCommand handles saved track and listening history operations.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Your Spotify library",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List saved tracks",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Page size",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Page offset",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryTracks,
			},
			{
				Name:  "save",
				Usage: "Save tracks to your library by ID",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "ids", Min: 1, Max: 50},
				},
				Action: r.LibrarySave,
			},
			{
				Name:  "remove",
				Usage: "Remove saved tracks by ID",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "ids", Min: 1, Max: 50},
				},
				Action: r.LibraryRemove,
			},
			{
				Name:  "top",
				Usage: "Show your top tracks or artists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "tracks or artists",
						Value: "tracks",
					},
					&cli.StringFlag{
						Name:  "range",
						Usage: "short_term, medium_term, or long_term",
						Value: "medium_term",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of entries",
						Value: 20,
					},
				},
				Action: r.LibraryTop,
			},
			{
				Name:  "recent",
				Usage: "Show recently played tracks",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of entries",
						Value: 20,
					},
				},
				Action: r.LibraryRecent,
			},
		},
	}
}

// searchCommand handles catalog search.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Comma-separated result types: track, album, artist, playlist",
				Value: "track",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per type",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// releasesCommand shows new album releases.
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "releases",
		Usage: "Show new album releases",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of releases",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Releases,
	}
}

// playerCommand handles playback control on the active device.
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Control playback on your active device",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show current playback state",
				Action: r.PlayerStatus,
			},
			{
				Name:   "devices",
				Usage:  "List available playback devices",
				Action: r.PlayerDevices,
			},
			{
				Name:  "play",
				Usage: "Start or resume playback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "context",
						Usage: "Context URI (playlist, album, artist)",
					},
					&cli.StringSliceFlag{
						Name:  "uri",
						Usage: "Track URI to play (repeatable)",
					},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Action: r.PlayerNext,
			},
			{
				Name:   "prev",
				Usage:  "Skip to the previous track",
				Action: r.PlayerPrevious,
			},
			{
				Name:  "seek",
				Usage: "Seek within the current track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "seconds"},
				},
				Action: r.PlayerSeek,
			},
			{
				Name:  "volume",
				Usage: "Set device volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "percent"},
				},
				Action: r.PlayerVolume,
			},
			{
				Name:  "queue",
				Usage: "Add a track to the playback queue",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "uri"},
				},
				Action: r.PlayerQueue,
			},
		},
	}
}

// exportCommand handles bulk playlist export.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Bulk playlist export",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Export all playlists to a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "API requests per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover images (markdown format)",
					},
				},
				Action: r.ExportRun,
			},
		},
	}
}

// cacheCommand handles the local playlist cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local playlist cache",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Sync playlists and tracks into the local database",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "rate",
						Usage: "API requests per second",
						Value: 5,
					},
				},
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached playlists and tracks",
				Action: r.CacheClear,
			},
		},
	}
}

// apiCommand handles raw authenticated Web API calls for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw authenticated Spotify API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET an endpoint, prints the JSON response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to an endpoint",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "put",
				Usage: "PUT a JSON body to an endpoint",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
				},
				Action: r.APIPut,
			},
			{
				Name:  "delete",
				Usage: "DELETE an endpoint",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist browser",
		Action:  r.TUI,
	}
}
