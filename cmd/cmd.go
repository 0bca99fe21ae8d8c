// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const defaultSession = "default"

func sessionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "session",
		Aliases: []string{"s"},
		Usage:   "Session id the search query is stored under",
		Value:   defaultSession,
	}
}

func pathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "path",
		Aliases: []string{"p"},
		Usage:   "Page path (defaults to server.page_path)",
	}
}

// watchCommand mirrors the page in an interactive terminal UI
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"ui"},
		Usage:   "Mirror the player page in an interactive terminal UI",
		Flags:   []cli.Flag{pathFlag(), sessionFlag()},
		Action:  r.Watch,
	}
}

// tailCommand prints pushed events as they are applied
func tailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Follow the event stream and print each event as it is applied",
		Flags: []cli.Flag{
			pathFlag(),
			sessionFlag(),
			&cli.BoolFlag{
				Name:  "no-page",
				Usage: "Do not load the page, only print events",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output one JSON object per event",
			},
		},
		Action: r.Tail,
	}
}

// serveCommand serves the mirrored page over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Keep the page mirrored and serve it over HTTP",
		Flags: []cli.Flag{
			pathFlag(),
			sessionFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to listen on",
				Value: "127.0.0.1:9890",
			},
		},
		Action: r.Serve,
	}
}

// fragmentCommand fetches a single fragment
func fragmentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fragment",
		Usage: "Fetch a fragment from the player server",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the markup instead of its text",
			},
		},
		Action: r.Fragment,
	}
}

// playerCommand sends playback commands
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Control playback on the player server",
		Commands: []*cli.Command{
			{Name: "play", Usage: "Resume playback", Action: r.PlayerPlay},
			{Name: "pause", Usage: "Pause playback", Action: r.PlayerPause},
			{Name: "next", Usage: "Skip to the next track", Action: r.PlayerNext},
			{Name: "previous", Aliases: []string{"prev"}, Usage: "Go back to the previous track", Action: r.PlayerPrevious},
			{
				Name:  "volume",
				Usage: "Set the volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "level"},
				},
				Action: r.PlayerVolume,
			},
			{
				Name:  "seek",
				Usage: "Seek to a position in milliseconds",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "position"},
				},
				Action: r.PlayerSeek,
			},
			{
				Name:  "skip-to",
				Usage: "Jump to an entry in the queue (0 is the first)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Action: r.PlayerSkipTo,
			},
			{
				Name:  "play-track",
				Usage: "Play a track by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.PlayerPlayTrack,
			},
			{
				Name:  "track",
				Usage: "Apply an action to a track: add-favorite, remove-favorite, add-to-queue, remove-from-queue or play-next",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "action"},
					&cli.StringArg{Name: "track-id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "queue-index",
						Usage: "Queue entry to remove, for remove-from-queue",
					},
				},
				Action: r.PlayerTrack,
			},
		},
	}
}

// queryCommand manages the stored search query
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Inspect or change the stored search query",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the stored query",
				Flags: []cli.Flag{
					sessionFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.QueryGet,
			},
			{
				Name:  "set",
				Usage: "Store a query (blank when omitted) and print the search tab links",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Flags:  []cli.Flag{sessionFlag()},
				Action: r.QuerySet,
			},
			{
				Name:   "clear",
				Usage:  "Remove the stored query",
				Flags:  []cli.Flag{sessionFlag()},
				Action: r.QueryClear,
			},
			{
				Name:  "sessions",
				Usage: "List sessions with stored values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.QuerySessions,
			},
		},
	}
}

// setupCommand prepares configuration and storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and session storage",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the session storage and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the latest sqlite migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// openCommand opens the page in a browser
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open the player page in the default browser, carrying the stored query",
		Flags:  []cli.Flag{pathFlag(), sessionFlag()},
		Action: r.Open,
	}
}
