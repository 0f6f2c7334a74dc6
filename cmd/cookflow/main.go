// CookFlow walks you through a recipe one step at a time, with a countdown
// for timed steps, and records finished recipes with the recipe server.
//
// Usage:
//
//	cookflow [--verbose] [--quiet] [--recipes=book.yaml | --demo] [--no-sound]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/run"

	"github.com/hammamikhairi/cookflow/internal/api"
	"github.com/hammamikhairi/cookflow/internal/chime"
	"github.com/hammamikhairi/cookflow/internal/config"
	"github.com/hammamikhairi/cookflow/internal/conversation"
	"github.com/hammamikhairi/cookflow/internal/display"
	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/engine"
	"github.com/hammamikhairi/cookflow/internal/logger"
	"github.com/hammamikhairi/cookflow/internal/recipe"
)

// Version is the application version (set via ldflags).
var Version = "dev"

type flags struct {
	verbose     bool
	quiet       bool
	logFile     string
	recipesFile string
	demo        bool
	noSound     bool
	envFile     string
}

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := kingpin.New("cookflow", "Step-by-step cooking assistant.")
	app.Version(Version)
	app.DefaultEnvars()

	var f flags
	app.Flag("verbose", "Enable debug logging.").BoolVar(&f.verbose)
	app.Flag("quiet", "Disable all logging.").BoolVar(&f.quiet)
	app.Flag("log-file", `File to write logs to ("stderr" logs to the console).`).Default(filepath.Join(".cookflow", "cookflow.log")).StringVar(&f.logFile)
	app.Flag("recipes", "Cook offline from a YAML recipe book instead of the server.").StringVar(&f.recipesFile)
	app.Flag("demo", "Cook offline from the built-in sample recipes.").BoolVar(&f.demo)
	app.Flag("no-sound", "Do not chime when a timer runs out.").BoolVar(&f.noSound)
	app.Flag("env-file", "Dotenv file with COOKFLOW_* settings.").Default(".env").StringVar(&f.envFile)

	if _, err := app.Parse(args[1:]); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOut, closeLog := openLog(f.logFile, stderr)
	defer closeLog()
	log := logger.New(logLevel(f), logOut)

	source, reporter, err := buildBackend(cfg, f, log)
	if err != nil {
		return err
	}

	var alarm domain.Alarm = chime.NoOp{}
	if !f.noSound {
		if player, err := chime.NewPlayer(log); err != nil {
			log.Warn("audio unavailable, timers will not chime: %v", err)
		} else {
			alarm = player
		}
	}

	// The controller and the UI refer to each other through the notifier,
	// so the notifier prints through a UI that is set right after.
	var ui *display.UI
	notifier := conversation.NewCLINotifier(log, func(a ...interface{}) { ui.Println(a...) })
	ctrl := engine.New(reporter, notifier, log,
		engine.WithTickInterval(cfg.TickInterval),
		engine.WithReportTimeout(cfg.ReportTimeout),
		engine.WithAlarm(alarm),
		engine.WithAdvanceLabels(cfg.NextLabel, cfg.DoneLabel),
	)
	ui = display.NewUI(ctrl, tea.WithInput(stdin), tea.WithOutput(stdout), tea.WithContext(ctx))
	defer func() {
		ctrl.Close()
		ctrl.Wait()
	}()

	fmt.Fprintln(stdout, display.RenderBanner())
	fmt.Fprintln(stdout, display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Fprintln(stdout)

	cli := &cliApp{
		ctrl:    ctrl,
		source:  source,
		parser:  conversation.NewKeywordParser(log),
		out:     ui,
		log:     log,
		offline: f.offline(),
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				log.Debug("termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Terminal UI. Bubble Tea owns the terminal until it quits.
	{
		g.Add(
			func() error {
				if err := ui.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return fmt.Errorf("display: %w", err)
				}
				return nil
			},
			func(_ error) {
				ui.Quit()
			},
		)
	}

	// Command loop.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				select {
				case <-ctx.Done():
					return nil
				case <-ui.Ready():
				}
				return cli.run(ctx, ui.InputChan())
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func (f flags) offline() bool { return f.recipesFile != "" || f.demo }

// buildBackend picks where recipes come from and where completions go.
// A recipe file wins over --demo.
func buildBackend(cfg config.Config, f flags, log *logger.Logger) (domain.RecipeSource, domain.CompletionReporter, error) {
	switch {
	case f.recipesFile != "":
		src, err := recipe.LoadFile(f.recipesFile, log)
		if err != nil {
			return nil, nil, err
		}
		return src, recipe.NewOfflineReporter(log), nil
	case f.demo:
		log.Info("demo mode: cooking from built-in recipes")
		return recipe.NewMemorySource(log), recipe.NewOfflineReporter(log), nil
	}

	client := api.NewClient(cfg.APIURL, log,
		api.WithHTTPTimeout(cfg.HTTPTimeout),
		api.WithCSRFToken(cfg.CSRFToken),
		api.WithSessionCookie(cfg.SessionCookie),
	)
	log.Info("using recipe server at %s", cfg.APIURL)
	return client, client, nil
}

func logLevel(f flags) logger.Level {
	switch {
	case f.quiet:
		return logger.LevelOff
	case f.verbose:
		return logger.LevelVerbose
	default:
		return logger.LevelNormal
	}
}

// openLog sends logs to a file by default so the prompt stays clean.
func openLog(path string, stderr io.Writer) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return stderr, func() {}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(stderr, "warning: could not create log dir %s: %v (falling back to stderr)\n", dir, err)
			return stderr, func() {}
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return stderr, func() {}
	}
	return file, func() { _ = file.Close() }
}

func main() {
	ctx := context.Background()
	if err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
