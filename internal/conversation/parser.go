// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
	// arg is the capture group carried as payload, 0 for none.
	arg int
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regex: regexp.MustCompile(`(?i)^(next|done|finish|continue|n|далее|готово)$`), intent: domain.IntentAdvance},
		{regex: regexp.MustCompile(`(?i)^(back|prev|previous|b|p|назад)$`), intent: domain.IntentRetreat},
		{regex: regexp.MustCompile(`(?i)^(?:goto|go to|step)\s+(-?\d+)$`), intent: domain.IntentGoToStep, arg: 1},
		{regex: regexp.MustCompile(`(?i)^(close|stop|abandon|x)$`), intent: domain.IntentClose},
		{regex: regexp.MustCompile(`(?i)^(show|status|where|repeat|again)$`), intent: domain.IntentShow},
		{regex: regexp.MustCompile(`(?i)^(list|recipes|ls|browse)$`), intent: domain.IntentListRecipes},
		{regex: regexp.MustCompile(`(?i)^(?:cook|start|open|select|pick)\s+(\S+)$`), intent: domain.IntentCook, arg: 1},
		{regex: regexp.MustCompile(`(?i)^(help|h|\?)$`), intent: domain.IntentHelp},
		{regex: regexp.MustCompile(`(?i)^(quit|exit|q)$`), intent: domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. A bare number selects a recipe
// from the last listing.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	if len(trimmed) <= 3 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentCook, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if rule.arg > 0 {
			intent.Payload = m[rule.arg]
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
