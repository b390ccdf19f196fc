// Package main provides the studiobridge command: a terminal front end for
// a persistent AI Studio browser session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/browser"
	appconfig "github.com/entrhq/studiobridge/pkg/config"
	"github.com/entrhq/studiobridge/pkg/executor/cli"
	"github.com/entrhq/studiobridge/pkg/executor/tui"
	"github.com/entrhq/studiobridge/pkg/logging"
	"github.com/entrhq/studiobridge/pkg/studio"
	"github.com/entrhq/studiobridge/pkg/tokens"
	"github.com/entrhq/studiobridge/pkg/upload"
)

const (
	version = "0.1.0"

	// closeTimeout bounds how long shutdown waits for an in-flight command.
	closeTimeout = 30 * time.Second
)

// Config holds the command line configuration.
type Config struct {
	ConfigPath  string
	ProfileDir  string
	Executable  string
	Channel     string
	Headless    bool
	SkipInstall bool
	Rich        bool
	Copy        bool
	NoColor     bool
	LogLevel    string
	LogDir      string
	ShowVersion bool

	Command string
	Args    []string

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("studiobridge v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, cli.ErrorText(err))
		os.Exit(1)
	}
}

// parseFlags parses global flags and the subcommand.
func parseFlags() *Config {
	config := &Config{set: make(map[string]bool)}

	flag.StringVar(&config.ConfigPath, "config", "", "Config file (.json or .yaml); default ~/.studiobridge/config.json")
	flag.StringVar(&config.ProfileDir, "profile", "", "Browser profile directory (overrides config)")
	flag.StringVar(&config.Executable, "executable", "", "Chrome executable path (overrides config)")
	flag.StringVar(&config.Channel, "channel", "", "Browser channel, e.g. chrome (overrides config)")
	flag.BoolVar(&config.Headless, "headless", false, "Run the browser without a window (overrides config)")
	flag.BoolVar(&config.SkipInstall, "skip-install", false, "Do not download the Playwright driver and browsers")
	flag.BoolVar(&config.Rich, "rich", false, "Request markdown answers")
	flag.BoolVar(&config.Copy, "copy", false, "Copy answers to the clipboard")
	flag.BoolVar(&config.NoColor, "no-color", false, "Disable syntax highlighting of markdown answers")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.LogDir, "log-dir", "", "Log directory; default ~/.studiobridge/logs")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "studiobridge - drive AI Studio from the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: studiobridge [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  chat                 interactive chat view (default)\n")
		fmt.Fprintf(os.Stderr, "  repl                 line-oriented prompt loop\n")
		fmt.Fprintf(os.Stderr, "  prompt <text|->      send one prompt; - reads stdin\n")
		fmt.Fprintf(os.Stderr, "  extract <path>       upload a file and print its text\n")
		fmt.Fprintf(os.Stderr, "  models               list available models\n")
		fmt.Fprintf(os.Stderr, "  set-model <name>     select a model by exact name\n")
		fmt.Fprintf(os.Stderr, "  state                print models and the active model as JSON\n")
		fmt.Fprintf(os.Stderr, "  reset                open a new chat\n")
		fmt.Fprintf(os.Stderr, "  last                 print the latest answer on the page\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  studiobridge prompt \"Summarize RFC 9110 in three bullets\"\n")
		fmt.Fprintf(os.Stderr, "  studiobridge -rich -copy extract ./paper.pdf\n")
		fmt.Fprintf(os.Stderr, "  studiobridge -config ~/.studiobridge/config.yaml set-model \"Gemini 2.5 Pro\"\n")
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	config.Command = "chat"
	if args := flag.Args(); len(args) > 0 {
		config.Command = args[0]
		config.Args = args[1:]
	}
	return config
}

// validate checks the subcommand and its arguments.
func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Command {
	case "chat", "repl", "models", "state", "reset", "last":
		return nil
	case "prompt":
		if len(c.Args) == 0 {
			return errors.New("prompt requires text or -")
		}
	case "extract":
		if len(c.Args) != 1 {
			return errors.New("extract requires exactly one path")
		}
	case "set-model":
		if len(c.Args) == 0 {
			return errors.New("set-model requires a model name")
		}
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}
	return nil
}

// run wires configuration, browser and bridge, then runs the command.
func run(ctx context.Context, config *Config) error {
	if config.LogDir != "" {
		logging.SetDirectory(config.LogDir)
	}
	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	logger := logging.MustLogger("studiobridge")
	defer logger.Close()
	logger.Infof("studiobridge v%s starting (command=%s)", version, config.Command)

	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	settings := appconfig.Global()
	config.applyOverrides(settings.Browser())

	selectors, err := settings.SelectorOverrides().Selectors()
	if err != nil {
		return err
	}
	policy, err := upload.NewPolicy(settings.Upload().PolicyConfig())
	if err != nil {
		return fmt.Errorf("invalid upload policy: %w", err)
	}
	counter := tokens.NewCounter(tokens.DefaultEncoding)

	manager := browser.NewManager(logger.With("browser"))
	manager.SkipInstall = settings.Browser().SkipInstall
	launcher := studio.NewLauncher(manager, settings.Browser().LaunchOptions(), selectors, studio.Waits{}, logger.With("studio"))

	timing := settings.Timing()
	opts := []bridge.Option{
		bridge.WithLogger(logger.With("bridge")),
		bridge.WithTimeouts(timing.BridgeTimeouts()),
		bridge.WithDetectorConfig(timing.DetectorConfig()),
		bridge.WithMaxQueueDepth(timing.MaxQueueDepth),
		bridge.WithUploadPolicy(policy),
		bridge.WithTokenCounter(counter),
	}

	var chat *tui.Executor
	if config.Command == "chat" {
		chat = tui.NewExecutor(nil, tui.WithRich(config.Rich), tui.WithLogger(logger.With("tui")), tui.WithTokenCounter(counter))
		opts = append(opts, bridge.WithEventSink(chat.Sink()))
	}

	b := bridge.New(launcher, opts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			logger.Warnf("bridge close: %v", err)
		}
	}()

	if chat != nil {
		chat.SetClient(b)
		return chat.Run(ctx)
	}

	exec := cli.NewExecutor(b,
		cli.WithRich(config.Rich),
		cli.WithCopy(config.Copy),
		cli.WithHighlight(!config.NoColor && term.IsTerminal(int(os.Stdout.Fd())), ""),
	)
	return runCommand(ctx, exec, config)
}

// runCommand dispatches a one-shot or REPL command.
func runCommand(ctx context.Context, exec *cli.Executor, config *Config) error {
	switch config.Command {
	case "repl":
		return exec.Run(ctx)
	case "prompt":
		text, err := promptText(config.Args, os.Stdin)
		if err != nil {
			return err
		}
		return exec.Prompt(ctx, text)
	case "extract":
		return exec.Extract(ctx, config.Args[0])
	case "models":
		return exec.Models(ctx)
	case "set-model":
		return exec.SetModel(ctx, strings.Join(config.Args, " "))
	case "state":
		return exec.State(ctx)
	case "reset":
		return exec.Reset(ctx)
	case "last":
		return exec.Last(ctx)
	}
	return fmt.Errorf("unknown command %q", config.Command)
}

// promptText joins args, or reads stdin when the only argument is "-".
func promptText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// applyOverrides copies explicitly set flags onto the browser section.
func (c *Config) applyOverrides(b *appconfig.BrowserSection) {
	data := map[string]interface{}{}
	if c.set["profile"] {
		data["profile_dir"] = c.ProfileDir
	}
	if c.set["executable"] {
		data["executable_path"] = c.Executable
	}
	if c.set["channel"] {
		data["channel"] = c.Channel
	}
	if c.set["headless"] {
		data["headless"] = c.Headless
	}
	if c.set["skip-install"] {
		data["skip_install"] = c.SkipInstall
	}
	if err := b.SetData(data); err != nil {
		log.Printf("Warning: ignoring flag overrides: %v", err)
	}
}
