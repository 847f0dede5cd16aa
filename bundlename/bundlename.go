// Package bundlename recognises asset-bundle filenames and extracts the
// character name and variant id they encode.
//
// Three conventions are understood, tried in order:
//
//	art_live2d_characters_{name}_{variant}.bundle
//	build_animations2d_characters_{name}_{variant}.bundle
//	build_prefabs_live2d_characters_char2d_{name}_{variant}.bundle
//
// Matching is case-insensitive and unanchored. A failed parse is a nil *Name;
// every method is safe to call on nil.
package bundlename

import "strings"

// Invalid is the String form of a name that failed to parse.
const Invalid = "Invalid"

// Name is an immutable, successfully parsed bundle filename.
type Name struct {
	kind      Kind
	character string
	variant   string
	full      string
}

// Parse tries each convention in order against filename and returns the first match,
// or nil if filename is empty or matches none of them.
func Parse(filename string) *Name {
	if filename == "" {
		return nil
	}

	for _, rule := range rules {
		m := rule.Pattern.FindStringSubmatch(filename)
		if len(m) < 3 {
			continue
		}
		return &Name{
			kind:      rule.Kind,
			character: m[1],
			variant:   m[2],
			full:      m[1] + "_" + m[2],
		}
	}
	return nil
}

// TryParse is Parse with the validity returned alongside.
func TryParse(filename string) (*Name, bool) {
	n := Parse(filename)
	return n, n.IsValid()
}

func (n *Name) IsValid() bool {
	return n != nil
}

func (n *Name) Kind() Kind {
	if n == nil {
		return ""
	}
	return n.kind
}

// CharacterName is the first capture group, exactly as it appeared.
func (n *Name) CharacterName() string {
	if n == nil {
		return ""
	}
	return n.character
}

// VariantID is the second capture group, always one or more digits.
func (n *Name) VariantID() string {
	if n == nil {
		return ""
	}
	return n.variant
}

// FullIdentifier is CharacterName and VariantID joined by an underscore.
func (n *Name) FullIdentifier() string {
	if n == nil {
		return ""
	}
	return n.full
}

// Key folds FullIdentifier for use as an index key. Upper-casing first maps
// characters such as U+017F to the same key as their EqualFold partners.
// Names with equal keys are candidates for MatchesParser, not proof of it.
func (n *Name) Key() string {
	if n == nil {
		return ""
	}
	return strings.ToLower(strings.ToUpper(n.full))
}

// MatchesCharacter reports whether n is valid and has the given character
// name and variant id, compared case-insensitively.
func (n *Name) MatchesCharacter(characterName, variantID string) bool {
	if !n.IsValid() {
		return false
	}
	return strings.EqualFold(n.character, characterName) &&
		strings.EqualFold(n.variant, variantID)
}

// MatchesParser reports whether n and other are both valid and name the same
// character and variant. The bundle kinds may differ.
func (n *Name) MatchesParser(other *Name) bool {
	if !n.IsValid() || !other.IsValid() {
		return false
	}
	return n.MatchesCharacter(other.character, other.variant)
}

func (n *Name) String() string {
	if !n.IsValid() {
		return Invalid
	}
	return n.full
}
