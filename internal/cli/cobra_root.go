package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"focus-tracker/internal/config"
	"focus-tracker/internal/logging"
)

// AppFactory builds the client application once configuration is loaded
type AppFactory func(cfg *config.Config, out io.Writer) *App

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	config     *config.Config
	app        *App
	newApp     AppFactory
	logCloser  io.Closer
	serveSetup func(*ServeCommand) *ServeCommand
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand() *RootCommand {
	root := &RootCommand{newApp: NewAppFromConfig}

	root.cmd = &cobra.Command{
		Use:   "ft",
		Short: "Track which applications you use while working on a task",
		Long: `Focus Tracker (ft) records the focused application and window while a task
is being tracked, and reports where the time went.

Run "ft serve" once per desktop session; every other command talks to that
daemon over HTTP.

EXAMPLES:
  ft serve                                 # Start the tracking daemon
  ft task add Write quarterly report       # Create a task in the default folder
  ft start 3                               # Track task 3
  ft status                                # Show the focused window being recorded
  ft stop                                  # Stop tracking
  ft daily 2025-03-12                      # Per-application totals for a day
  ft timeline --format csv > today.csv     # Export today's sessions

CONFIGURATION:
  Priority: command-line flags > environment variables > config file > defaults.
  The config file (--config or FT_CONFIG) may be YAML or JSON with comments.

    FT_DB_DIR, FT_DB_FILENAME              Database location (default: ~/.ft/ft.db)
    FT_POLL_INTERVAL                       Window sampling interval (default: 2s)
    FT_IDLE_TIMEOUT                        Gap before a session is closed (default: 5m)
    FT_TRACK_WINDOW_TITLES                 Split sessions by window title (default: true)
    FT_PROBE_BACKENDS                      Probe order (default: hyprland,sway,x11)
    FT_TIMEZONE                            Zone for day buckets (default: local)
    FT_SERVER_HOST, FT_SERVER_PORT         Daemon listen address (default: 127.0.0.1:8000)
    FT_SERVER_URL                          Daemon URL used by client commands
    FT_LOG_LEVEL, FT_LOG_FORMAT            Logging (default: info, text)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if root.logCloser != nil {
				return root.logCloser.Close()
			}
			return nil
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// SetAppFactory replaces how the client application is built
func (r *RootCommand) SetAppFactory(factory AppFactory) {
	r.newApp = factory
}

// SetServeSetup adjusts the daemon before it runs, for tests
func (r *RootCommand) SetServeSetup(setup func(*ServeCommand) *ServeCommand) {
	r.serveSetup = setup
}

// SetArgs sets the arguments, for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOut redirects command output
func (r *RootCommand) SetOut(out io.Writer) {
	r.cmd.SetOut(out)
}

// Config returns the configuration loaded for the last run
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command; serve stops when ctx is cancelled
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds configuration flags shared by every command
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file, YAML or JSON (overrides FT_CONFIG)")

	flags.String("db-dir", "", "Database directory (overrides FT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides FT_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides FT_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides FT_DB_WRITE_TIMEOUT)")
	flags.String("timezone", "", "IANA zone for day buckets (overrides FT_TIMEZONE)")

	flags.String("log-level", "", "debug, info, warn or error (overrides FT_LOG_LEVEL)")
	flags.String("log-format", "", "text or json (overrides FT_LOG_FORMAT)")
	flags.String("log-file", "", "Append logs to this file (overrides FT_LOG_FILE)")

	flags.String("server-url", "", "Daemon URL for client commands (overrides FT_SERVER_URL)")
	flags.Duration("app-timeout", 0, "Client command timeout (overrides FT_APP_TIMEOUT)")
}

func addServeFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "Listen host (overrides FT_SERVER_HOST)")
	flags.Int("port", 0, "Listen port (overrides FT_SERVER_PORT)")
	flags.Duration("shutdown-timeout", 0, "Drain deadline on shutdown (overrides FT_SHUTDOWN_TIMEOUT)")
	flags.Duration("poll-interval", 0, "Window sampling interval (overrides FT_POLL_INTERVAL)")
	flags.Duration("idle-timeout", 0, "Gap before a session is closed (overrides FT_IDLE_TIMEOUT)")
	flags.Duration("probe-timeout", 0, "Deadline for one window sample (overrides FT_PROBE_TIMEOUT)")
	flags.Duration("checkpoint-interval", 0, "How often the open session is marked alive (overrides FT_CHECKPOINT_INTERVAL)")
	flags.Bool("track-window-titles", true, "Split sessions by window title (overrides FT_TRACK_WINDOW_TITLES)")
	flags.StringSlice("backends", nil, "Probe backends in priority order (overrides FT_PROBE_BACKENDS)")
}

// overridesFromFlags collects the flags the user actually set
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	o := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	o.DBDir = str("db-dir")
	o.DBFilename = str("db-filename")
	o.DBQueryTimeout = dur("db-query-timeout")
	o.DBWriteTimeout = dur("db-write-timeout")
	o.Timezone = str("timezone")

	o.LogLevel = str("log-level")
	o.LogFormat = str("log-format")
	o.LogFile = str("log-file")

	o.ServerURL = str("server-url")
	o.Timeout = dur("app-timeout")

	if flags.Lookup("host") != nil {
		o.Host = str("host")
		if flags.Changed("port") {
			port, _ := flags.GetInt("port")
			o.Port = &port
		}
		o.ShutdownTimeout = dur("shutdown-timeout")
		o.PollInterval = dur("poll-interval")
		o.IdleTimeout = dur("idle-timeout")
		o.ProbeTimeout = dur("probe-timeout")
		o.CheckpointInterval = dur("checkpoint-interval")
		if flags.Changed("track-window-titles") {
			titles, _ := flags.GetBool("track-window-titles")
			o.TrackWindowTitles = &titles
		}
		if flags.Changed("backends") {
			o.Backends, _ = flags.GetStringSlice("backends")
		}
	}
	return o
}

// loadConfig runs the defaults, file, environment and flag cascade
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.NewLoader().WithFile(path).LoadWithOverrides(overridesFromFlags(flags))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg
	r.app = r.newApp(cfg, cmd.OutOrStdout())
	return nil
}

// runClient runs a registered client command under the client timeout
func (r *RootCommand) runClient(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.config.Application.Timeout)
		defer cancel()
		return r.app.registry.Execute(ctx, name, args)
	}
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking daemon",
		Long: `Run the tracking daemon: sample the focused window, record sessions for the
tracked task and serve the HTTP API. SIGINT or SIGTERM closes the open
session and shuts down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := logging.Initialize(logging.Options{
				Level:  r.config.Logging.Level,
				Format: r.config.Logging.Format,
				File:   r.config.Logging.File,
			})
			if err != nil {
				return err
			}
			r.logCloser = closer

			serve := NewServeCommand(r.config)
			if r.serveSetup != nil {
				serve = r.serveSetup(serve)
			}
			return serve.Execute(cmd.Context(), args)
		},
	}
	addServeFlags(serveCmd.Flags())

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is being tracked",
		Args:  cobra.NoArgs,
		RunE:  r.runClient("status"),
	}

	startCmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start tracking a task",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runClient("start"),
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking",
		Args:  cobra.NoArgs,
		RunE:  r.runClient("stop"),
	}

	resumeCmd := &cobra.Command{
		Use:   "resume [Nd|Nw]",
		Short: "Resume a recently tracked task",
		Long: `Pick a task from those with sessions in the lookback window and track it.

Examples:
  ft resume      # Tasks worked on today
  ft resume 3d   # Tasks worked on in the last 3 days`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Interactive; allow time for the prompt
			ctx, cancel := context.WithTimeout(cmd.Context(), r.config.Application.Timeout*2)
			defer cancel()
			return r.app.registry.Execute(ctx, "resume", args)
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show today, week, 30-day and all-time totals",
		Args:  cobra.NoArgs,
		RunE:  r.runClient("summary"),
	}

	dailyCmd := &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Per-application totals for a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  r.runClient("daily"),
	}

	timelineCmd := &cobra.Command{
		Use:   "timeline [YYYY-MM-DD]",
		Short: "List a day's sessions, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return r.runClient("timeline")(cmd, append(args, "format="+format))
		},
	}
	timelineCmd.Flags().String("format", "table", "table or csv")

	r.cmd.AddCommand(
		serveCmd,
		statusCmd,
		startCmd,
		stopCmd,
		resumeCmd,
		summaryCmd,
		dailyCmd,
		timelineCmd,
		r.folderCommand(),
		r.taskCommand(),
	)
}

func (r *RootCommand) folderCommand() *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage task folders",
	}

	sub := func(use, short string, args cobra.PositionalArgs, verb string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, a []string) error {
				return r.runClient("folder")(cmd, append([]string{verb}, a...))
			},
		}
	}

	folderCmd.AddCommand(
		sub("list", "List folders", cobra.NoArgs, "list"),
		sub("add <name>", "Create a folder", cobra.MinimumNArgs(1), "add"),
		sub("rename <id> <name>", "Rename a folder", cobra.MinimumNArgs(2), "rename"),
		sub("rm <id>", "Delete a folder; its tasks move to the default folder", cobra.ExactArgs(1), "rm"),
	)
	return folderCmd
}

func (r *RootCommand) taskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := []string{"list"}
			if folder, _ := cmd.Flags().GetInt64("folder"); folder != 0 {
				a = append(a, fmt.Sprint(folder))
			}
			return r.runClient("task")(cmd, a)
		},
	}
	listCmd.Flags().Int64("folder", 0, "Only tasks in this folder")

	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := append([]string{"add"}, args...)
			if folder, _ := cmd.Flags().GetInt64("folder"); folder != 0 {
				a = append(a, fmt.Sprintf("folder=%d", folder))
			}
			if desc, _ := cmd.Flags().GetString("description"); desc != "" {
				a = append(a, "description="+desc)
			}
			return r.runClient("task")(cmd, a)
		},
	}
	addCmd.Flags().Int64("folder", 0, "Folder id (default folder when omitted)")
	addCmd.Flags().String("description", "", "Task description")

	moveCmd := &cobra.Command{
		Use:   "move <id> <folder-id>",
		Short: "Move a task to another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runClient("task")(cmd, append([]string{"move"}, args...))
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runClient("task")(cmd, append([]string{"rm"}, args...))
		},
	}

	taskCmd.AddCommand(listCmd, addCmd, moveCmd, rmCmd)
	return taskCmd
}
