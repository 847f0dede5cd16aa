package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/josephvusich/bundlegroup/report"
	"github.com/mattn/go-zglob"
	"github.com/stretchr/testify/require"
)

const (
	aliceArt    = "a/art_live2d_characters_alice_07.bundle"
	aliceAnim   = "a/build_animations2d_characters_alice_07.bundle"
	alicePrefab = "a/build_prefabs_live2d_characters_char2d_alice_07.bundle"
	bobArt      = "a/art_live2d_characters_bob_3.bundle"
	readme      = "a/readme.txt"
	aliceArtDup = "b/ART_LIVE2D_CHARACTERS_ALICE_07.BUNDLE"
	bobAnim     = "b/build_animations2d_characters_bob_3.bundle"
	hidden      = "b/.art_live2d_characters_zed_1.bundle"
)

func TestScanner_NoVerb(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.Recursive = true

		assert.NoError(scanner.Scan())
		assert.NoError(scanner.Export())
		fmt.Println(scanner.totals.PrettyFormat(scanner.options.Verb()))
		assert.Equal(uint64(7), scanner.totals.Files.count)
		assert.Equal(uint64(67), scanner.totals.Files.size)
		assert.Equal(uint64(6), scanner.totals.Bundles.count)
		assert.Equal(uint64(61), scanner.totals.Bundles.size)
		assert.Equal(uint64(0), scanner.totals.Duplicates.count)
		assert.Equal(uint64(1), scanner.totals.Unmatched.count)
		assert.Equal(uint64(6), scanner.totals.Unmatched.size)
		assert.Equal(uint64(0), scanner.totals.Filtered.count)
		assert.Equal(uint64(0), scanner.totals.Processed.count)
		assert.Equal(uint64(0), scanner.totals.Skipped.count)
		assert.Equal(uint64(0), scanner.totals.Errors.count)
		assert.Equal(uint64(2), scanner.totals.groups)
		assert.Equal(uint64(1), scanner.totals.complete)

		groups := scanner.table.Groups()
		assert.Len(groups, 2)
		assert.Equal("alice_07", groups[0].Identifier())
		assert.Len(groups[0].Members, 4)
		assert.Len(groups[0].Distinct(), 4)
		assert.True(groups[0].Complete())
		assert.Equal("bob_3", groups[1].Identifier())
		assert.Len(groups[1].Members, 2)
		assert.False(groups[1].Complete())

		assert.Equal([]string{filepath.FromSlash(readme)}, scanner.table.unmatched)
		l.validate(assert)
	})
}

func TestScanner_NonRecursive(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()

		assert.NoError(scanner.Scan())
		assert.Equal(uint64(0), scanner.totals.Files.count)
		assert.Empty(scanner.table.Groups())

		scanner = newScanner()
		assert.NoError(scanner.Scan("a", "b"))
		assert.Equal(uint64(6), scanner.totals.Bundles.count)
		assert.Len(scanner.table.Groups(), 2)
	})
}

func TestScanner_Checksum(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.Recursive = true
		scanner.options.Checksum = true

		assert.NoError(scanner.Scan())
		assert.Equal(uint64(6), scanner.totals.Bundles.count)
		assert.Equal(uint64(1), scanner.totals.Duplicates.count)
		assert.Equal(uint64(10), scanner.totals.Duplicates.size)

		g := scanner.table.Groups()[0]
		assert.Equal("alice_07", g.Identifier())
		assert.Len(g.Members, 4)
		assert.Len(g.Distinct(), 3)

		dup := g.Members[3]
		assert.Equal(filepath.FromSlash(aliceArtDup), dup.RelPath)
		assert.NotNil(dup.DuplicateOf)
		assert.Equal(filepath.FromSlash(aliceArt), dup.DuplicateOf.RelPath)
		assert.True(dup.HasChecksum)
		assert.Equal(dup.Checksum, dup.DuplicateOf.Checksum)

		// Same kind, different size; never hashed.
		bob := scanner.table.Groups()[1]
		for _, r := range bob.Members {
			assert.Nil(r.DuplicateOf)
			assert.False(r.HasChecksum)
		}
		l.validate(assert)
	})
}

func TestScanner_Copy(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.copyGroups = true
		scanner.options.Output = "out"
		scanner.options.Recursive = true
		scanner.options.Checksum = true

		assert.NoError(scanner.Scan("a", "b"))
		assert.NoError(scanner.Export())
		fmt.Println(scanner.totals.PrettyFormat(scanner.options.Verb()))
		assert.Equal(uint64(5), scanner.totals.Processed.count)
		assert.Equal(uint64(51), scanner.totals.Processed.size)
		assert.Equal(uint64(0), scanner.totals.Errors.count)

		l.content["out/alice_07/art_live2d_characters_alice_07.bundle"] = l.content[aliceArt]
		l.content["out/alice_07/build_animations2d_characters_alice_07.bundle"] = l.content[aliceAnim]
		l.content["out/alice_07/build_prefabs_live2d_characters_char2d_alice_07.bundle"] = l.content[alicePrefab]
		l.content["out/bob_3/art_live2d_characters_bob_3.bundle"] = l.content[bobArt]
		l.content["out/bob_3/build_animations2d_characters_bob_3.bundle"] = l.content[bobAnim]
		l.validate(assert)

		src, err := os.Stat(aliceArt)
		assert.NoError(err)
		dst, err := os.Stat("out/alice_07/art_live2d_characters_alice_07.bundle")
		assert.NoError(err)
		assert.False(os.SameFile(src, dst))
		assert.True(src.ModTime().Equal(dst.ModTime()))

		// Second pass finds everything already exported
		scanner = newScanner()
		scanner.options.copyGroups = true
		scanner.options.Output = "out"
		scanner.options.Recursive = true
		scanner.options.Checksum = true

		assert.NoError(scanner.Scan("a", "b"))
		assert.NoError(scanner.Export())
		assert.Equal(uint64(0), scanner.totals.Processed.count)
		assert.Equal(uint64(5), scanner.totals.Skipped.count)
		l.validate(assert)
	})
}

func TestScanner_Overwrite(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		const stale = "out/bob_3/art_live2d_characters_bob_3.bundle"
		assert.NoError(os.MkdirAll("out/bob_3", 0777))
		assert.NoError(os.WriteFile(stale, []byte("stale"), 0666))

		scanner := newScanner()
		scanner.options.copyGroups = true
		scanner.options.Output = "out"
		scanner.options.Character = "bob"
		scanner.options.Overwrite = true

		assert.NoError(scanner.Scan("a", "b"))
		assert.NoError(scanner.Export())
		assert.Equal(uint64(2), scanner.totals.Processed.count)
		assert.Equal(uint64(4), scanner.totals.Filtered.count)

		l.content[stale] = l.content[bobArt]
		l.content["out/bob_3/build_animations2d_characters_bob_3.bundle"] = l.content[bobAnim]
		l.validate(assert)
	})
}

func TestScanner_Link(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.linkGroups = true
		scanner.options.Output = "out"
		scanner.options.CompleteOnly = true
		scanner.options.Checksum = true

		assert.NoError(scanner.Scan("a", "b"))
		assert.NoError(scanner.Export())
		assert.Equal(uint64(3), scanner.totals.Processed.count)
		assert.Equal(uint64(1), scanner.totals.groups)
		assert.Equal(uint64(1), scanner.totals.complete)

		l.content["out/alice_07/art_live2d_characters_alice_07.bundle"] = l.content[aliceArt]
		l.content["out/alice_07/build_animations2d_characters_alice_07.bundle"] = l.content[aliceAnim]
		l.content["out/alice_07/build_prefabs_live2d_characters_char2d_alice_07.bundle"] = l.content[alicePrefab]
		l.validate(assert)

		src, err := os.Stat(alicePrefab)
		assert.NoError(err)
		dst, err := os.Stat("out/alice_07/build_prefabs_live2d_characters_char2d_alice_07.bundle")
		assert.NoError(err)
		assert.True(os.SameFile(src, dst))
	})
}

func TestScanner_DryRun(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.copyGroups = true
		scanner.options.Output = "out"
		scanner.options.DryRun = true

		assert.NoError(scanner.Scan("a", "b"))
		assert.NoError(scanner.Export())
		assert.Equal(uint64(0), scanner.totals.Processed.count)
		assert.Equal(uint64(6), scanner.totals.Skipped.count)

		_, err := os.Stat("out")
		assert.True(os.IsNotExist(err))
		l.validate(assert)
	})
}

func TestScanner_ExcludeAndKind(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.Recursive = true
		scanner.options.Verbose = true
		assert.NoError(scanner.options.Filter.FlagValue(false).Set("./b/**/*"))
		assert.NoError(scanner.options.Filter.FlagValue(false).Set("*.txt"))
		assert.Equal(2, scanner.options.Filter.Len())
		var err error
		scanner.options.Kinds, err = parseKindSpec("art")
		assert.NoError(err)

		assert.NoError(scanner.Scan())
		assert.Equal(uint64(4), scanner.totals.Files.count)
		assert.Equal(uint64(2), scanner.totals.Bundles.count)
		assert.Equal(uint64(2), scanner.totals.Filtered.count)
		assert.Equal(uint64(0), scanner.totals.Unmatched.count)
		assert.Equal(uint64(0), scanner.totals.complete)
	})
}

func TestScanner_Report(t *testing.T) {
	assert := require.New(t)
	setupTest(assert, func(l *testLayout) {
		scanner := newScanner()
		scanner.options.Recursive = true
		scanner.options.Checksum = true

		assert.NoError(scanner.Scan())
		assert.NoError(writeReport("report.json", scanner.table.Groups(), scanner.table.unmatched))

		b, err := os.ReadFile("report.json")
		assert.NoError(err)
		var rep report.Report
		assert.NoError(json.Unmarshal(b, &rep))

		assert.Len(rep.Groups, 2)
		alice := rep.Groups[0]
		assert.Equal("alice_07", alice.Identifier)
		assert.Equal("alice", alice.Character)
		assert.Equal("07", alice.Variant)
		assert.True(alice.Complete)
		assert.Empty(alice.Missing)
		assert.Len(alice.Bundles, 4)
		assert.Equal("art", alice.Bundles[0].Kind)
		assert.Equal(int64(10), alice.Bundles[0].Size)
		assert.Len(alice.Bundles[0].Checksum, ChecksumBlockSize*2)
		assert.Equal(alice.Bundles[0].Checksum, alice.Bundles[3].Checksum)
		assert.Equal(filepath.FromSlash(aliceArt), alice.Bundles[3].DuplicateOf)

		bob := rep.Groups[1]
		assert.Equal("bob_3", bob.Identifier)
		assert.False(bob.Complete)
		assert.Equal([]string{"prefab"}, bob.Missing)
		assert.Empty(bob.Bundles[0].Checksum)

		assert.Equal([]string{filepath.FromSlash(readme)}, rep.Unmatched)
	})
}

type testLayout struct {
	// Relative slash path => content
	content map[string]string
}

func setupTest(assert *require.Assertions, f func(l *testLayout)) {
	l := &testLayout{
		content: map[string]string{
			aliceArt:    "alice art\n",
			aliceAnim:   "alice anim\n",
			alicePrefab: "alice prefab\n",
			bobArt:      "bob art\n",
			readme:      "hello\n",
			aliceArtDup: "alice art\n",
			bobAnim:     "bob anim\n",
			hidden:      "zed\n",
		},
	}
	setupTestLayout(assert, l, f)
}

func setupTestLayout(assert *require.Assertions, l *testLayout, f func(l *testLayout)) {
	prev, err := os.Getwd()
	assert.NoError(err)
	dir, err := os.MkdirTemp("", "bundlegrouptest")
	assert.NoError(err)
	defer os.RemoveAll(dir)
	defer os.Chdir(prev)
	assert.NoError(os.Chdir(dir))

	for p, c := range l.content {
		p = filepath.FromSlash(p)
		assert.NoError(os.MkdirAll(filepath.Dir(p), 0777))
		assert.NoError(os.WriteFile(p, []byte(c), 0666))
	}

	f(l)
}

// validate checks that exactly the files in l.content exist, with their content.
// Hidden entries are checked for content only.
func (l *testLayout) validate(assert *require.Assertions) {
	glob, err := zglob.Glob("./**/*")
	assert.NoError(err)

	var got []string
	for _, x := range glob {
		st, err := os.Stat(x)
		assert.NoError(err)
		if !st.IsDir() && filepath.Base(x)[0] != '.' {
			got = append(got, filepath.ToSlash(filepath.Clean(x)))
		}
	}

	var want []string
	for p, c := range l.content {
		b, err := os.ReadFile(filepath.FromSlash(p))
		assert.NoError(err)
		assert.Equalf(c, string(b), "%s", p)
		if filepath.Base(p)[0] != '.' {
			want = append(want, p)
		}
	}

	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(want, got)
}
