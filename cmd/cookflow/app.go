package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/cookflow/internal/display"
	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/engine"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// printer is the part of the terminal UI the command loop writes to.
type printer interface {
	Println(a ...interface{})
	PrintChat(text string)
	PrintStep(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

var _ printer = (*display.UI)(nil)

type cliApp struct {
	ctrl    *engine.Controller
	source  domain.RecipeSource
	parser  domain.IntentParser
	out     printer
	log     *logger.Logger
	offline bool
	listing []domain.RecipeSummary // last shown list, for "cook <n>"
}

// run reads input lines until the channel closes, the context ends or the
// user quits.
func (a *cliApp) run(ctx context.Context, input <-chan string) error {
	if a.offline {
		a.out.PrintHint("Offline mode: finished recipes are not sent to the server.")
	}
	a.showRecipes(ctx)

	for {
		var line string
		var ok bool

		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-input:
			if !ok {
				return nil
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, line)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if quit := a.handleIntent(ctx, intent); quit {
			return nil
		}
	}
}

// handleIntent performs one user action. It returns true when the user
// asked to quit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentListRecipes:
		a.showRecipes(ctx)
	case domain.IntentCook:
		a.cook(ctx, intent.Payload)
	case domain.IntentAdvance:
		if !a.requireSession() {
			return false
		}
		if v := a.ctrl.Advance(ctx); !v.Active() {
			a.out.PrintHint("Type 'list' to pick another recipe.")
		}
	case domain.IntentRetreat:
		if a.requireSession() {
			a.ctrl.Retreat()
		}
	case domain.IntentGoToStep:
		if !a.requireSession() {
			return false
		}
		n, err := strconv.Atoi(intent.Payload)
		if err != nil {
			a.out.PrintUrgent(fmt.Sprintf("%q is not a step number.", intent.Payload))
			return false
		}
		a.ctrl.GoToStep(stepIndex(n))
	case domain.IntentClose:
		if a.requireSession() {
			a.ctrl.Close()
			a.out.PrintHint("Session closed.")
		}
	case domain.IntentShow:
		if a.requireSession() {
			a.out.Println(display.RenderCard(a.ctrl.View(), 0))
		}
	case domain.IntentQuit:
		a.out.PrintChat("Bye! Happy cooking.")
		return true
	default:
		a.out.PrintHint("Not sure what you mean. Type 'help' for commands.")
	}
	return false
}

// stepIndex turns a 1-based step number into an index. Numbers below one
// map to the first step so the subtraction cannot wrap.
func stepIndex(n int) int {
	if n < 1 {
		return 0
	}
	return n - 1
}

func (a *cliApp) requireSession() bool {
	if a.ctrl.Phase() == domain.PhaseActive {
		return true
	}
	a.out.PrintHint("No recipe in progress. Type 'list' then 'cook <number>'.")
	return false
}

func (a *cliApp) showRecipes(ctx context.Context) {
	list, err := a.source.List(ctx)
	if err != nil {
		a.log.Error("listing recipes: %v", err)
		a.out.PrintUrgent("Could not load recipes: " + err.Error())
		return
	}
	a.listing = list

	if len(list) == 0 {
		a.out.PrintHint("No recipes yet.")
		return
	}
	a.out.PrintStep("Recipes")
	for i, r := range list {
		a.out.PrintChat(fmt.Sprintf("%d. %s", i+1, r.Title))
		if r.Description != "" {
			a.out.PrintHint("   " + r.Description)
		}
	}
}

// cook starts a session. ref is a number from the last listing or a recipe ID.
func (a *cliApp) cook(ctx context.Context, ref string) {
	id := ref
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(a.listing) {
		id = a.listing[n-1].ID
	}

	r, err := a.source.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.out.PrintUrgent(fmt.Sprintf("No recipe %q.", ref))
			return
		}
		a.log.Error("fetching recipe %s: %v", id, err)
		a.out.PrintUrgent("Could not load recipe: " + err.Error())
		return
	}

	if err := a.ctrl.Start(ctx, r); err != nil {
		// The controller already told the user why.
		a.log.Debug("start refused: %v", err)
		return
	}
	a.out.PrintStep("Cooking " + r.Title)
}

func (a *cliApp) showHelp() {
	a.out.PrintStep("Commands")
	for _, line := range []string{
		"list              show recipes",
		"cook <n|id>       start cooking a recipe",
		"next              next step, or finish on the last step",
		"back              previous step",
		"goto <n>          jump to step n",
		"show              print the current step",
		"close             stop cooking without finishing",
		"quit              exit",
	} {
		a.out.PrintHint(line)
	}
}
