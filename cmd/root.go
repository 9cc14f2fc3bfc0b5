package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/tv/internal/clipboard"
	"github.com/oakwood-commons/tv/internal/config"
	"github.com/oakwood-commons/tv/internal/engine"
	"github.com/oakwood-commons/tv/internal/help"
	"github.com/oakwood-commons/tv/internal/limiter"
	"github.com/oakwood-commons/tv/internal/loader"
	"github.com/oakwood-commons/tv/internal/ui"
	"github.com/oakwood-commons/tv/pkg/logger"
	"github.com/oakwood-commons/tv/pkg/settings"
	"github.com/oakwood-commons/tv/pkg/tui"
)

// errNotTerminal is returned when the interactive viewer is started without
// a terminal on stdout.
var errNotTerminal = errors.New("stdout is not a terminal; use --snapshot to render a single frame")

var (
	configFile     string
	debug          bool
	logFile        string
	maxFileSize    int64
	maxRows        int
	workers        int
	offsetRecords  int
	limitRecords   int
	tailRecords    int
	keyMode        string
	noColor        bool
	renderSnapshot bool
	snapshotWidth  int
	snapshotHeight int
	startKeys      []string
	output         string

	// mergedConfig is the configuration of the current run, set by
	// PersistentPreRunE.
	mergedConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "Browse CSV, Parquet and Arrow files in the terminal",
	Long: `tv opens a CSV, TSV, Parquet or Arrow IPC file in a scrollable table.
Filters, searches, sorts and histograms are pushed on a stack; Esc undoes the
most recent one. Gzip and zstd compressed files are decompressed on the fly.`,
	Example: "\n  tv data.csv\n  tv --keymap function events.parquet\n  tv --tail 1000 log.csv.gz\n  tv data.csv --snapshot --width 100 --height 20 --press 'w' --press 'value > 5<CR>'\n",
	Args:    cobra.MaximumNArgs(1),
	Version: settings.VersionInformation.BuildVersion,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfgPath := resolveConfigPath(configFile)
		cfg, err := loadMergedConfig(cfgPath)
		if err != nil {
			return err
		}
		if err := applyFlags(&cfg, cmd.Flags()); err != nil {
			return err
		}
		mergedConfig = cfg

		run := settings.NewCliParams()
		run.ConfigFile = cfgPath
		run.LogFile = cfg.Log.File
		run.KeyMode = cfg.Keys.Mode
		run.NoColor = cfg.Display.NoColor
		run.Snapshot = renderSnapshot
		run.Interactive = !renderSnapshot && cmd == cmd.Root()
		run.MinLogLevel = -cfg.Log.Level
		if debug {
			run.MinLogLevel = min(run.MinLogLevel, -1)
		}

		lgr := logger.Get(logger.Options{Level: run.MinLogLevel, File: run.LogFile, Stderr: run.LogToStderr()})
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithLogger(ctx, lgr)
		ctx = settings.IntoContext(ctx, run)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	},
	SilenceUsage: true,
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("max-file-size") {
		cfg.Limits.MaxFileSize = maxFileSize
	}
	if flags.Changed("max-rows") {
		cfg.Limits.MaxRows = maxRows
	}
	if flags.Changed("workers") {
		cfg.Limits.Workers = workers
	}
	if flags.Changed("keymap") {
		cfg.Keys.Mode = keyMode
	}
	if flags.Changed("no-color") {
		cfg.Display.NoColor = noColor
	}
	return cfg.Validate()
}

func runViewer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lgr := *logger.FromContext(ctx)
	run := settings.FromContextOrDefault(ctx)
	cfg := mergedConfig

	window := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := window.Validate(); err != nil {
		return err
	}
	keys, err := ui.NewKeymap(cfg.Keys.Mode, cfg.Keys.Bindings)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	if !run.Snapshot && !ui.IsTerminal() {
		return errNotTerminal
	}

	width, height := snapshotWidth, snapshotHeight
	var clip engine.Clipboard = clipboard.System{}
	if run.Snapshot {
		clip = &clipboard.Memory{}
	} else {
		width, height = tui.DetectTerminalSize()
	}

	keyMap := cfg.Keys.Mode
	e := engine.New(engine.Options{
		Context:   ctx,
		Config:    cfg,
		Clipboard: clip,
		Logger:    lgr,
		LoadOptions: loader.Options{
			MaxFileSize: cfg.Limits.MaxFileSize,
			MaxRows:     cfg.Limits.MaxRows,
			Window:      window,
			Workers:     cfg.Limits.Workers,
		},
		HelpText: func() string { return help.Text(keyMap) },
		Width:    width,
		Height:   height,
	})

	if len(args) == 1 {
		err := e.Update(engine.LoadFile{Path: args[0]})
		if err != nil && run.Snapshot {
			return err
		}
		// interactive runs show the error on the status line
	}

	m := ui.NewModel(e, ui.Options{Keys: keys, NoColor: cfg.Display.NoColor, Logger: lgr})
	if run.Snapshot {
		return ui.WriteSnapshot(cmd.OutOrStdout(), m, startKeys, output)
	}
	lgr.V(1).Info("starting viewer", logger.ModeKey, keys.Mode(), "width", width, "height", height)
	return ui.Run(ctx, m, startKeys)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tv version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
		return err
	},
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := mergedConfig.CommentedYAML()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() { //nolint:gochecknoinits
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file")
	flags.BoolVar(&debug, "debug", false, "log at debug level")
	flags.StringVar(&logFile, "log-file", "", "write JSON logs to this file")
	flags.Int64Var(&maxFileSize, "max-file-size", 0, "largest file accepted in bytes, 0 disables (default from config)")
	flags.IntVar(&maxRows, "max-rows", 0, "most rows accepted, 0 disables (default from config)")
	flags.IntVar(&workers, "workers", 0, "concurrent column decoders, 0 uses all CPUs")
	flags.StringVar(&keyMode, "keymap", "", "keybinding mode: vim (default) or function")
	flags.BoolVar(&noColor, "no-color", false, "disable color output")

	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "skip the first N rows")
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "load at most N rows")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "load only the last N rows (mutually exclusive with --limit; ignores --offset)")
	rootCmd.Flags().BoolVar(&renderSnapshot, "snapshot", false, "render a single frame and exit; honors --width/--height/--press")
	rootCmd.Flags().IntVar(&snapshotWidth, "width", engine.DefaultWidth, "snapshot width in columns")
	rootCmd.Flags().IntVar(&snapshotHeight, "height", engine.DefaultHeight, "snapshot height in rows")
	rootCmd.Flags().StringArrayVar(&startKeys, "press", nil, "simulate keys on startup. Use <Key> for special keys (e.g. <CR>, <Esc>, <C-c>, <S-F2>); other text types normally")
	rootCmd.Flags().StringVarP(&output, "output", "o", ui.FormatText, "snapshot output: text|json")

	rootCmd.SetVersionTemplate("{{ .Name }} {{ .Version }}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
