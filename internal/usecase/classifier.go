package usecase

import (
	"fmt"
	"regexp"

	"github.com/xavierca1/stockwatch/internal/entity"
)

type Rule string

const (
	RuleOutOfStock Rule = "out_of_stock"
	RuleInStock    Rule = "in_stock"
	RuleNoSignal   Rule = "no_signal"
)

// Classification is the outcome of checking a page plus the rule that decided it.
type Classification struct {
	Available bool
	Rule      Rule
	Pattern   string
}

// Classifier decides availability from page text. Out-of-stock patterns win
// over in-stock hints, and a page with neither counts as unavailable.
type Classifier struct {
	outOfStock []*regexp.Regexp
	inStock    []*regexp.Regexp
}

func NewClassifier(rules entity.AvailabilityRules) (*Classifier, error) {
	outOfStock, err := compilePatterns(rules.OutOfStock)
	if err != nil {
		return nil, fmt.Errorf("out-of-stock patterns: %w", err)
	}
	inStock, err := compilePatterns(rules.InStock)
	if err != nil {
		return nil, fmt.Errorf("in-stock patterns: %w", err)
	}
	return &Classifier{
		outOfStock: outOfStock,
		inStock:    inStock,
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func (c *Classifier) Classify(text string) Classification {
	for _, re := range c.outOfStock {
		if re.MatchString(text) {
			return Classification{Available: false, Rule: RuleOutOfStock, Pattern: stripFlags(re)}
		}
	}
	for _, re := range c.inStock {
		if re.MatchString(text) {
			return Classification{Available: true, Rule: RuleInStock, Pattern: stripFlags(re)}
		}
	}
	return Classification{Available: false, Rule: RuleNoSignal}
}

func (c *Classifier) Available(text string) bool {
	return c.Classify(text).Available
}

func stripFlags(re *regexp.Regexp) string {
	return re.String()[len("(?i)"):]
}
