package bundlename

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies which naming convention a bundle filename matched.
type Kind string

const (
	KindArt       Kind = "art"
	KindAnimation Kind = "animation"
	KindPrefab    Kind = "prefab"
)

// Rule pairs a convention with its compiled pattern. The pattern must have
// exactly two capture groups: character name, then variant id.
type Rule struct {
	Kind    Kind
	Pattern *regexp.Regexp
}

// rules is the ordered convention table. First match wins.
var rules = []Rule{
	{KindArt, regexp.MustCompile(`(?i)art_live2d_characters_([^_]+)_(\d+)\.bundle`)},
	{KindAnimation, regexp.MustCompile(`(?i)build_animations2d_characters_([^_]+)_(\d+)\.bundle`)},
	{KindPrefab, regexp.MustCompile(`(?i)build_prefabs_live2d_characters_char2d_([^_]+)_(\d+)\.bundle`)},
}

// Rules returns a copy of the convention table in match order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Kinds returns every Kind in rule order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(rules))
	for _, r := range rules {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

// ParseKind accepts a Kind name, case-insensitive. "anim" and "animations"
// are accepted for KindAnimation, "prefabs" for KindPrefab.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "art":
		return KindArt, nil
	case "animation", "animations", "anim":
		return KindAnimation, nil
	case "prefab", "prefabs":
		return KindPrefab, nil
	}
	return "", fmt.Errorf("unknown bundle kind: %q", s)
}
