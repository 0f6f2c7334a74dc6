package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookflow/internal/api"
	"github.com/hammamikhairi/cookflow/internal/config"
	"github.com/hammamikhairi/cookflow/internal/conversation"
	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/engine"
	"github.com/hammamikhairi/cookflow/internal/logger"
	"github.com/hammamikhairi/cookflow/internal/recipe"
)

// fakePrinter records everything the command loop prints.
type fakePrinter struct {
	mu    sync.Mutex
	lines []string
}

func (p *fakePrinter) add(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, s)
}

func (p *fakePrinter) Println(a ...interface{}) { p.add(fmt.Sprint(a...)) }
func (p *fakePrinter) PrintChat(text string)    { p.add(text) }
func (p *fakePrinter) PrintStep(text string)    { p.add(text) }
func (p *fakePrinter) PrintHint(text string)    { p.add(text) }
func (p *fakePrinter) PrintUrgent(text string)  { p.add(text) }

func (p *fakePrinter) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.lines, "\n")
}

type countingReporter struct {
	mu  sync.Mutex
	ids []string
}

func (r *countingReporter) NotifyCompletion(_ context.Context, id string) (*domain.CompletionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return &domain.CompletionResult{Message: "ok"}, nil
}

func (r *countingReporter) reported() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

const testBook = `
recipes:
  - id: pasta
    title: Pasta
    steps:
      - description: Boil water
        timer_seconds: 5
      - description: Add pasta
  - id: empty
    title: Empty
`

func setupApp(t *testing.T) (*cliApp, *fakePrinter, *countingReporter) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	src, err := recipe.LoadYAML(strings.NewReader(testBook), log)
	require.NoError(t, err)

	out := &fakePrinter{}
	reporter := &countingReporter{}
	ctrl := engine.New(reporter, conversation.NewCLINotifier(log, out.Println), log,
		engine.WithTickInterval(time.Hour),
	)
	t.Cleanup(func() {
		ctrl.Close()
		ctrl.Wait()
	})

	return &cliApp{
		ctrl:   ctrl,
		source: src,
		parser: conversation.NewKeywordParser(log),
		out:    out,
		log:    log,
	}, out, reporter
}

func say(t *testing.T, a *cliApp, line string) bool {
	t.Helper()
	intent, err := a.parser.Parse(context.Background(), line)
	require.NoError(t, err)
	return a.handleIntent(context.Background(), intent)
}

func TestCookThroughRecipe(t *testing.T) {
	a, out, reporter := setupApp(t)

	say(t, a, "list")
	assert.Contains(t, out.output(), "1. Empty")
	assert.Contains(t, out.output(), "2. Pasta")

	say(t, a, "cook 2")
	require.Equal(t, domain.PhaseActive, a.ctrl.Phase())
	v := a.ctrl.View()
	assert.Equal(t, "Boil water", v.Description)
	assert.True(t, v.HasTimer)
	assert.Equal(t, 5, v.TimerRemaining)

	say(t, a, "next")
	v = a.ctrl.View()
	assert.Equal(t, 2, v.StepNumber)
	assert.False(t, v.HasTimer)
	assert.Equal(t, "Done", v.AdvanceLabel)

	say(t, a, "next")
	assert.Equal(t, domain.PhaseIdle, a.ctrl.Phase())

	a.ctrl.Wait()
	assert.Equal(t, []string{"pasta"}, reporter.reported())
	assert.Contains(t, out.output(), "Congratulations! Recipe finished.")
}

func TestNavigationCommands(t *testing.T) {
	a, out, _ := setupApp(t)

	say(t, a, "cook pasta")
	say(t, a, "goto 99")
	assert.Equal(t, 1, a.ctrl.StepIndex())

	say(t, a, "back")
	assert.Equal(t, 0, a.ctrl.StepIndex())

	say(t, a, "show")
	assert.Contains(t, out.output(), "Step 1 of 2")

	say(t, a, "close")
	assert.Equal(t, domain.PhaseIdle, a.ctrl.Phase())
}

func TestGoToStepNumbers(t *testing.T) {
	tests := map[string]struct {
		from    string
		input   string
		expStep int
	}{
		"Step numbers should be 1-based":                {from: "goto 1", input: "goto 2", expStep: 1},
		"Zero should select the first step":             {from: "goto 2", input: "goto 0", expStep: 0},
		"The smallest int should select the first step": {from: "goto 2", input: "goto -9223372036854775808", expStep: 0},
		"Huge numbers should select the last step":      {from: "goto 1", input: "goto 9223372036854775807", expStep: 1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a, _, _ := setupApp(t)
			say(t, a, "cook pasta")
			say(t, a, test.from)

			say(t, a, test.input)
			assert.Equal(t, test.expStep, a.ctrl.StepIndex())
		})
	}
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, stepIndex(math.MinInt))
	assert.Equal(t, 0, stepIndex(0))
	assert.Equal(t, 0, stepIndex(1))
	assert.Equal(t, 4, stepIndex(5))
	assert.Equal(t, math.MaxInt-1, stepIndex(math.MaxInt))
}

func TestCommandsWithoutSession(t *testing.T) {
	for _, cmd := range []string{"next", "back", "goto 1", "close", "show"} {
		t.Run(cmd, func(t *testing.T) {
			a, out, _ := setupApp(t)

			assert.False(t, say(t, a, cmd))
			assert.Contains(t, out.output(), "No recipe in progress")
			assert.Equal(t, domain.PhaseIdle, a.ctrl.Phase())
		})
	}
}

func TestCookErrors(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"unknown id":   {input: "cook nope", want: `No recipe "nope".`},
		"empty recipe": {input: "cook empty", want: "This recipe has no steps."},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a, out, _ := setupApp(t)

			say(t, a, test.input)
			assert.Contains(t, out.output(), test.want)
			assert.Equal(t, domain.PhaseIdle, a.ctrl.Phase())
		})
	}
}

func TestRunLoopStopsOnQuit(t *testing.T) {
	a, out, _ := setupApp(t)

	in := make(chan string, 3)
	in <- "cook pasta"
	in <- ""
	in <- "quit"

	require.NoError(t, a.run(context.Background(), in))
	assert.Equal(t, domain.PhaseActive, a.ctrl.Phase())
	assert.Contains(t, out.output(), "Bye!")
}

func TestRunLoopStopsOnContext(t *testing.T) {
	a, _, _ := setupApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.run(ctx, make(chan string)))
}

func TestBuildBackend(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cfg, err := config.Load()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "book.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBook), 0o600))

	tests := map[string]struct {
		flags        flags
		expSource    any
		expReporter  any
		expOffline   bool
		expRecipeIDs []string
	}{
		"Without offline flags the recipe server should be used": {
			flags:       flags{},
			expSource:   &api.Client{},
			expReporter: &api.Client{},
		},
		"A recipe file should be cooked offline": {
			flags:        flags{recipesFile: path},
			expSource:    &recipe.MemorySource{},
			expReporter:  &recipe.OfflineReporter{},
			expOffline:   true,
			expRecipeIDs: []string{"empty", "pasta"},
		},
		"Demo mode should cook the built-in recipes offline": {
			flags:        flags{demo: true},
			expSource:    &recipe.MemorySource{},
			expReporter:  &recipe.OfflineReporter{},
			expOffline:   true,
			expRecipeIDs: []string{"green-tea", "pasta-aglio-olio", "soft-boiled-eggs"},
		},
		"A recipe file should win over demo mode": {
			flags:        flags{recipesFile: path, demo: true},
			expSource:    &recipe.MemorySource{},
			expReporter:  &recipe.OfflineReporter{},
			expOffline:   true,
			expRecipeIDs: []string{"empty", "pasta"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			src, rep, err := buildBackend(cfg, test.flags, log)
			require.NoError(t, err)
			assert.IsType(t, test.expSource, src)
			assert.IsType(t, test.expReporter, rep)
			assert.Equal(t, test.expOffline, test.flags.offline())

			if test.expRecipeIDs == nil {
				return
			}
			list, err := src.List(context.Background())
			require.NoError(t, err)
			var ids []string
			for _, r := range list {
				ids = append(ids, r.ID)
			}
			assert.ElementsMatch(t, test.expRecipeIDs, ids)
		})
	}
}

func TestBuildBackendMissingFile(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	_, _, err = buildBackend(cfg, flags{recipesFile: filepath.Join(t.TempDir(), "missing.yaml")}, logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}

func TestDemoRecipeCooksToCompletion(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, rep, err := buildBackend(config.Config{}, flags{demo: true}, log)
	require.NoError(t, err)

	out := &fakePrinter{}
	ctrl := engine.New(rep, conversation.NewCLINotifier(log, out.Println), log,
		engine.WithTickInterval(time.Hour),
	)
	t.Cleanup(func() {
		ctrl.Close()
		ctrl.Wait()
	})
	a := &cliApp{ctrl: ctrl, source: src, parser: conversation.NewKeywordParser(log), out: out, log: log, offline: true}

	say(t, a, "cook green-tea")
	require.Equal(t, domain.PhaseActive, ctrl.Phase())
	say(t, a, "next")
	say(t, a, "next")
	ctrl.Wait()

	assert.Equal(t, domain.PhaseIdle, ctrl.Phase())
	assert.Contains(t, out.output(), "Congratulations! Recipe finished.")
	assert.NotContains(t, out.output(), "Completion was not recorded")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.LevelNormal, logLevel(flags{}))
	assert.Equal(t, logger.LevelVerbose, logLevel(flags{verbose: true}))
	assert.Equal(t, logger.LevelOff, logLevel(flags{verbose: true, quiet: true}))
}

func TestOpenLog(t *testing.T) {
	var stderr bytes.Buffer

	w, closeFn := openLog("stderr", &stderr)
	assert.Same(t, &stderr, w)
	closeFn()

	path := filepath.Join(t.TempDir(), "logs", "cookflow.log")
	w, closeFn = openLog(path, &stderr)
	_, err := fmt.Fprint(w, "hello")
	require.NoError(t, err)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
