package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/josephvusich/bundlegroup/bundlename"
	"github.com/josephvusich/bundlegroup/matchers"
	"github.com/josephvusich/go-getopt"
)

type verb int

const (
	VerbNone verb = iota
	VerbCopy
	VerbLink
)

func (v verb) String() string {
	switch v {
	case VerbNone:
		return "list"
	case VerbCopy:
		return "copy"
	case VerbLink:
		return "hardlink"
	}
	return fmt.Sprintf("unknown verb value %d", v)
}

func (v verb) PastTense() string {
	switch v {
	case VerbNone:
		return "listed"
	case VerbCopy:
		return "copied"
	case VerbLink:
		return "hardlinked"
	}
	return fmt.Sprintf("unknown verb value %d", v)
}

// kindSet is empty when every kind is wanted.
type kindSet map[bundlename.Kind]struct{}

func (k kindSet) has(kind bundlename.Kind) bool {
	if len(k) == 0 {
		return true
	}
	_, ok := k[kind]
	return ok
}

func (k kindSet) String() string {
	elems := make([]string, 0, len(k))
	for x := range k {
		elems = append(elems, string(x))
	}
	sort.Strings(elems)
	return strings.Join(elems, "+")
}

func parseKindSpec(spec string) (kindSet, error) {
	k := kindSet{}
	if spec == "" {
		return k, nil
	}
	for _, s := range strings.FieldsFunc(spec, func(r rune) bool { return r == '+' || r == ',' }) {
		kind, err := bundlename.ParseKind(s)
		if err != nil {
			return nil, err
		}
		k[kind] = struct{}{}
	}
	if len(k) == 0 {
		return nil, fmt.Errorf("no kinds in %q", spec)
	}
	return k, nil
}

type options struct {
	copyGroups bool
	linkGroups bool

	// Export destination; each group gets its own subdirectory.
	Output string

	Kinds     kindSet
	Character string
	Variant   string

	// Glob rules applied to every path before parsing.
	Filter matchers.GlobSet

	Recursive    bool
	MinSize      int64
	Checksum     bool
	CompleteOnly bool
	Overwrite    bool
	JsonReport   string

	Quiet   bool
	Verbose bool
	DryRun  bool
	Help    bool
}

func (o *options) Verb() verb {
	switch true {
	case o.copyGroups:
		return VerbCopy
	case o.linkGroups:
		return VerbLink
	}
	return VerbNone
}

// Selects reports whether a parsed bundle passes the --kind, --character and
// --variant filters. With both character and variant given this is exactly
// MatchesCharacter.
func (o *options) Selects(n *bundlename.Name) bool {
	if !n.IsValid() || !o.Kinds.has(n.Kind()) {
		return false
	}
	switch {
	case o.Character != "" && o.Variant != "":
		return n.MatchesCharacter(o.Character, o.Variant)
	case o.Character != "":
		return strings.EqualFold(n.CharacterName(), o.Character)
	case o.Variant != "":
		return strings.EqualFold(n.VariantID(), o.Variant)
	}
	return true
}

func (o *options) Validate() error {
	if o.Quiet && o.Verbose {
		return errors.New("--quiet and --verbose are mutually exclusive")
	}
	if o.copyGroups && o.linkGroups {
		return errors.New("--copy and --link are mutually exclusive")
	}
	if o.Verb() != VerbNone && o.Output == "" {
		return errors.New("--copy and --link require --output")
	}
	if o.Verb() == VerbNone && (o.Output != "" || o.Overwrite) {
		return errors.New("--output and --overwrite require --copy or --link")
	}
	if o.MinSize < 0 {
		return errors.New("--minimum-size must not be negative")
	}
	return nil
}

func (o *options) ParseArgs() (dirs []string) {
	o.Filter.DefaultInclude = true
	flag.BoolVar(&o.copyGroups, "copy", false, "(verb) copy each group into its own directory under --output")
	flag.BoolVar(&o.linkGroups, "link", false, "(verb) hardlink each group into its own directory under --output\nmutually exclusive with --copy")
	flag.StringVar(&o.Output, "output", "", "export groups into `DIR`/<character>_<variant>/")
	flag.BoolVar(&o.Recursive, "recursive", false, "traverse subdirectories")
	flag.BoolVar(&o.Checksum, "checksum", false, "detect duplicate bundles within a group by content\nduplicates are listed but never exported")
	flag.BoolVar(&o.CompleteOnly, "complete-only", false, "only list and export groups that have art, animation and prefab bundles")
	flag.BoolVar(&o.Overwrite, "overwrite", false, "replace files that already exist under --output")
	flag.BoolVar(&o.DryRun, "dry-run", false, "don't actually do anything, just show what would be done")
	flag.BoolVar(&o.Quiet, "quiet", false, "don't display current filename during scanning")
	flag.BoolVar(&o.Verbose, "verbose", false, "display why each file was grouped, filtered or skipped")
	flag.BoolVar(&o.Help, "help", false, "show this help screen and exit")
	flag.Int64Var(&o.MinSize, "minimum-size", 0, "skip files smaller than `BYTES`")
	flag.StringVar(&o.Character, "character", "", "only group bundles for character `NAME` (case insensitive)")
	flag.StringVar(&o.Variant, "variant", "", "only group bundles with variant `ID`")
	flag.StringVar(&o.JsonReport, "json", "", "write a JSON report of all groups to `FILE`")
	flag.Var(o.Filter.FlagValue(false), "exclude", "skip files matching glob `PATTERN`\npatterns without a path separator match the file name only\nmay appear more than once")
	flag.Var(o.Filter.FlagValue(true), "include", "only scan files matching glob `PATTERN`, overriding earlier --exclude\nmay appear more than once")
	kindSpec := flag.String("kind", "", "only group bundles of `KINDS`, where valid kinds are:\n  art\n  animation\n  prefab\nspecify multiple kinds using '+', e.g.: art+prefab")

	getopt.Alias("c", "copy")
	getopt.Alias("l", "link")
	getopt.Alias("o", "output")
	getopt.Alias("r", "recursive")
	getopt.Alias("s", "checksum")
	getopt.Alias("C", "complete-only")
	getopt.Alias("f", "overwrite")
	getopt.Alias("t", "dry-run")
	getopt.Alias("q", "quiet")
	getopt.Alias("v", "verbose")
	getopt.Alias("z", "minimum-size")
	getopt.Alias("n", "character")
	getopt.Alias("i", "variant")
	getopt.Alias("j", "json")
	getopt.Alias("x", "exclude")
	getopt.Alias("k", "kind")

	if err := getopt.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	var err error
	if o.Kinds, err = parseKindSpec(*kindSpec); err != nil {
		fmt.Println("Invalid --kind parameter:", err)
		o.Help = true
	}

	if err = o.Validate(); err != nil {
		fmt.Println("Invalid flag combination:", err)
		o.Help = true
	}

	if o.Help {
		flag.Usage()
		os.Exit(1)
	}

	return getopt.CommandLine.Args()
}
