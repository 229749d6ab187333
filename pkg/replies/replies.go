// Package replies matches free-text chat messages against an ordered list
// of canned-response rules. The first matching rule wins.
package replies

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule is one canned-response pattern. Match receives the lowercased,
// accent-folded message. Chance gates the rule: 0 means always fire, a
// value in (0,1) fires with that probability and otherwise falls through
// to later rules.
type Rule struct {
	Name    string
	Match   func(text string) bool
	Chance  float64
	Respond func(raw string) string
}

// Matcher walks rules in order and returns the first response. It is safe
// for concurrent use; the mutex guards the unsynchronized rand source.
type Matcher struct {
	rules []Rule

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMatcher(rng *rand.Rand, rules []Rule) *Matcher {
	return &Matcher{rules: rules, rng: rng}
}

func (m *Matcher) chance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

// Reply returns the canned response for a message, or ok=false when no
// rule matches.
func (m *Matcher) Reply(message string) (string, bool) {
	text := Normalize(message)
	for _, rule := range m.rules {
		if !rule.Match(text) {
			continue
		}
		if rule.Chance > 0 && m.chance() >= rule.Chance {
			continue
		}
		return rule.Respond(message), true
	}
	return "", false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and strips combining accent marks, so "Adiós"
// matches "adios".
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// DefaultRules returns the bot's stock ruleset.
func DefaultRules(botName string) []Rule {
	name := Normalize(botName)
	helpText := fmt.Sprintf("Hi! I'm %s. I can reply to a few phrases here, "+
		"and I know slash commands for dice, quests, the prize machine and escape rooms.", botName)

	return []Rule{
		{
			Name:    "greeting",
			Match:   func(t string) bool { return strings.HasPrefix(t, "hello") || strings.HasPrefix(t, "hi ") },
			Respond: func(string) string { return "Hello!" },
		},
		{
			Name:    "help",
			Match:   func(t string) bool { return strings.HasPrefix(t, "!help") },
			Respond: func(string) string { return helpText },
		},
		{
			Name:    "high-five",
			Match:   func(t string) bool { return strings.HasSuffix(t, "5") || strings.HasSuffix(t, "five") },
			Chance:  1.0 / 6.0,
			Respond: func(string) string { return "High five!" },
		},
		{
			Name:    "good-night",
			Match:   func(t string) bool { return strings.HasPrefix(t, "good night") },
			Respond: func(string) string { return "Good night!" },
		},
		{
			Name:    "mention",
			Match:   func(t string) bool { return name != "" && strings.Contains(t, name) },
			Respond: func(string) string { return "Yes? Did someone call me?" },
		},
		{
			Name: "crisis",
			Match: anyKeyword(
				"i want to die",
				"kill myself",
				"end my life",
				"i cant go on",
				"i can't go on",
			),
			Respond: func(string) string { return "**You matter. Suicide prevention line: 024**" },
		},
	}
}

func anyKeyword(keywords ...string) func(string) bool {
	return func(t string) bool {
		for _, k := range keywords {
			if strings.Contains(t, k) {
				return true
			}
		}
		return false
	}
}
