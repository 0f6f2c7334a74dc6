package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/timer"
)

// RenderCard renders the active step of a cooking session. It depends only
// on v and width, so equal input always renders equal output. An idle view
// renders nothing. A width of zero or less disables wrapping.
func RenderCard(v domain.View, width int) string {
	if !v.Active() {
		return ""
	}

	desc := primaryStyle
	if width > 4 {
		desc = desc.Width(width - 4)
	}

	lines := []string{
		titleStyle.Render(v.Title) + secondaryStyle.Render(fmt.Sprintf("  %s", stepCount(v.StepCount))),
		stepStyle.Render(fmt.Sprintf("Step %d of %d", v.StepNumber, v.StepCount)),
		desc.Render(v.Description),
	}
	if v.ImageURL != "" {
		lines = append(lines, secondaryStyle.Render("Image: "+v.ImageURL))
	}
	if t := TimerText(v); t != "" {
		style := timerRunStyle
		if v.TimerExpired {
			style = timerDoneStyle
		}
		lines = append(lines, style.Render(t))
	}
	lines = append(lines, secondaryStyle.Render(fmt.Sprintf("[next] %s   [back] Previous   [close] Close", v.AdvanceLabel)))

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// TimerText is the timer line of the card, or "" when the step has none.
func TimerText(v domain.View) string {
	if !v.HasTimer {
		return ""
	}
	if v.TimerExpired {
		return "Timer: " + timer.FormatClock(0) + " (done)"
	}
	return "Timer: " + timer.FormatClock(v.TimerRemaining)
}

func stepCount(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)
)
