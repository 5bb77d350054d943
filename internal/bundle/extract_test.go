package bundle

import (
	"context"
	"errors"
	"testing"

	"unbundle/internal/codegen"
	"unbundle/internal/syntax"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingGenerator fails on the entry whose body text matches failOn.
type failingGenerator struct {
	failOn string
	calls  int
}

func (g *failingGenerator) Generate(tree *syntax.Tree, node *syntax.Node, opts codegen.Options) (string, error) {
	g.calls++
	if tree.Text(node) == g.failOn {
		return "", errors.New("cannot print")
	}
	return tree.Text(node), nil
}

func extract(t *testing.T, src string, opts ...ExtractorOption) *ModuleTable {
	t.Helper()
	table, err := NewExtractor(codegen.NewSourceGenerator(), opts...).Extract(context.Background(), parseBundle(t, src))
	require.NoError(t, err)
	return table
}

func TestExtract_TwoModules(t *testing.T) {
	table := extract(t, `var x = [{ "alpha": function(){ return 1; }, "beta": function(){ return 2; } }];`)

	assert.Equal(t, []string{"alpha", "beta"}, table.Keys())

	alpha, ok := table.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, Module{Key: "alpha", RawName: "alpha", Source: "function(){ return 1; }", Line: 1}, alpha)

	beta, _ := table.Get("beta")
	assert.Equal(t, "function(){ return 2; }", beta.Source)
	assert.Empty(t, table.Collisions())
}

func TestExtract_SanitizedKey(t *testing.T) {
	table := extract(t, `[{ "a/b": function () {} }]`)

	m, ok := table.Get("a_b")
	require.True(t, ok)
	assert.Equal(t, "a/b", m.RawName)
}

func TestExtract_LastWriteWins(t *testing.T) {
	table := extract(t, `[{ "a:b": function () { return "first"; } }, { "a/b": function () { return "second"; } }]`)

	require.Equal(t, 1, table.Len())
	m, _ := table.Get("a_b")
	assert.Equal(t, `function () { return "second"; }`, m.Source)
	assert.Equal(t, "a/b", m.RawName)

	want := []Collision{{Key: "a_b", Replaced: "a:b", By: "a/b"}}
	if diff := cmp.Diff(want, table.Collisions()); diff != "" {
		t.Errorf("collisions mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_SourceIsNormalized(t *testing.T) {
	src := "[{\n\n  m: function () {\n\n    var a = 1;\n\n    return a;\n  }\n}]"
	table := extract(t, src)

	m, _ := table.Get("m")
	assert.Equal(t, "function () {\n  var a = 1;\n  return a;\n}", m.Source)
	assert.Equal(t, 3, m.Line)
}

func TestExtract_NonFunctionValues(t *testing.T) {
	src := `[{ fn: function () {}, arrow: () => 1, wrapped: (function () {}), data: { nested: true }, num: 42 }]`

	all := extract(t, src)
	assert.Equal(t, []string{"fn", "arrow", "wrapped", "data", "num"}, all.Keys())
	data, _ := all.Get("data")
	assert.Equal(t, "{ nested: true }", data.Source)

	onlyFuncs := extract(t, src, WithRequireFunction(true))
	assert.Equal(t, []string{"fn", "arrow", "wrapped"}, onlyFuncs.Keys())
}

func TestExtract_GeneratorOptions(t *testing.T) {
	opts := codegen.DefaultOptions()
	opts.Compact = true
	opts.Comments = false

	table := extract(t, "[{ m: function () {\n  // hi\n  return 1;\n} }]", WithGenerateOptions(opts))
	m, _ := table.Get("m")
	assert.Equal(t, "function(){return 1;}", m.Source)
}

func TestExtract_GenerationFailureIsFatal(t *testing.T) {
	tree := parseBundle(t, "[{ ok: 1 }, {\n bad: 2 }, { later: 3 }]")
	gen := &failingGenerator{failOn: "2"}

	table, err := NewExtractor(gen).Extract(context.Background(), tree)
	require.Error(t, err)
	assert.Nil(t, table)

	var gf *GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, "bad", gf.Name)
	assert.Equal(t, 2, gf.Line)
	assert.Equal(t, 2, gen.calls, "entries after the failure must not be generated")
}

func TestExtract_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(codegen.NewSourceGenerator()).Extract(ctx, parseBundle(t, `[{ a: 1 }]`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_NoEntries(t *testing.T) {
	table := extract(t, `var config = { a: function () {} };`)
	assert.Equal(t, 0, table.Len())
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  error
		want string
	}{
		{&InputError{Path: "in.js", Err: cause}, "error reading or parsing file in.js: boom"},
		{&GenerationFailure{Name: "a", Line: 3, Err: cause}, `error generating module "a" (line 3): boom`},
		{&DirectoryError{Path: "out", Err: cause}, "error creating directory out: boom"},
		{&WriteFailure{Path: "out/a.js", Err: cause}, "error writing file out/a.js: boom"},
	}
	for _, tt := range tests {
		assert.EqualError(t, tt.err, tt.want)
		assert.ErrorIs(t, tt.err, cause)
	}
}
