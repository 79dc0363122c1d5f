package loam

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/ports/tests"
	"github.com/aretw0/espalier/pkg/term"
)

const boolDoc = `---
sorts: [Bool]
ops:
  - name: "true"
    range: Bool
  - name: "false"
    range: Bool
  - name: not
    domain: [Bool]
    range: Bool
equations:
  - lhs: not(true)
    rhs: "false"
  - lhs: not(false)
    rhs: "true"
---
Booleans`

const switchDoc = `---
imports: [bool]
vars:
  B: Bool
rules:
  - label: flip
    lhs: B
    rhs: not(B)
strategies:
  - name: twice
    expr: flip ; flip
---
A switch that flips.`

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, core.Document{ID: "bool.md", Content: boolDoc}))
	require.NoError(t, repo.Save(ctx, core.Document{ID: "switch.md", Content: switchDoc}))

	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	boolDef, err := loader.Definition(ctx, "bool")
	require.NoError(t, err)
	switchDef, err := loader.Definition(ctx, "switch")
	require.NoError(t, err)

	boolYAML, err := yaml.Marshal(boolDef)
	require.NoError(t, err)
	switchYAML, err := yaml.Marshal(switchDef)
	require.NoError(t, err)

	tests.ModuleLoaderContractTest(t, loader, map[string][]byte{
		"bool":   boolYAML,
		"switch": switchYAML,
	})
}

func TestLoader_Definition_ResolvesImports(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"bool.md":   boolDoc,
		"switch.md": switchDoc,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	def, err := loader.Definition(context.Background(), "switch")
	require.NoError(t, err)

	assert.Equal(t, "switch", def.Name)
	assert.Equal(t, "A switch that flips.", def.Description)
	assert.Equal(t, []string{"Bool"}, def.Sorts)
	assert.Len(t, def.Ops, 3)
	assert.Len(t, def.Equations, 2)
	require.Len(t, def.Rules, 1)
	assert.Equal(t, "flip", def.Rules[0].Label)
	assert.Equal(t, map[string]string{"B": "Bool"}, def.Vars)

	mod, err := module.Compile(def)
	require.NoError(t, err)
	_, ok := mod.Sig.Symbol("not", 1)
	assert.True(t, ok)
	assert.Equal(t, []string{"twice"}, mod.StrategyNames())
}

func TestLoader_Definition_SharedImportMergedOnce(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"bool.md": boolDoc,
		"left.md": `---
imports: [bool]
ops:
  - name: l
    range: Bool
---`,
		"right.md": `---
imports: [bool.md]
ops:
  - name: r
    range: Bool
---`,
		"both.md": `---
imports: [left, right]
---`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	def, err := loader.Definition(context.Background(), "both")
	require.NoError(t, err)
	assert.Len(t, def.Ops, 5)
	assert.Len(t, def.Equations, 2)

	_, err = module.Compile(def)
	require.NoError(t, err)
}

func TestLoader_Definition_DetectsImportCycle(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"a.md": `---
imports: [b]
---`,
		"b.md": `---
imports: [a]
---`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	_, err := loader.GetModule("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestLoader_GetModule_NotFound(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, nil)
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	_, err := loader.GetModule("missing")
	assert.True(t, errors.Is(err, domain.ErrModuleNotFound))
}

func TestLoader_GetModule_DecodesAsModule(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"pair.json": `{
  "name": "PAIR",
  "sorts": ["Elt"],
  "ops": [
    {"name": "a", "range": "Elt"},
    {"name": "f", "domain": ["Elt", "Elt"], "range": "Elt", "attrs": {"comm": true}}
  ]
}`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	data, err := loader.GetModule("pair")
	require.NoError(t, err)

	mod, err := module.Load(data)
	require.NoError(t, err)
	assert.Equal(t, "PAIR", mod.Name)
	f, ok := mod.Sig.Symbol("f", 2)
	require.True(t, ok)
	assert.Equal(t, term.Comm, f.Theory())
}

func TestLoader_ListModules_NormalizesNames(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"bool.md": boolDoc,
		"nat.json": `{
  "name": "nat.json",
  "sorts": ["Nat"]
}`,
		"implicit.yaml": `sorts: [Elt]`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	names, err := loader.ListModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"bool", "implicit", "nat"}, names)
}

func TestLoader_ListModules_DetectsCollisions(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"foo.md": `---
name: foo
---
Explicit name`,
		"foo.json": `{
  "name": "foo"
}`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	_, err := loader.ListModules()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_ListModules_SkipsHiddenDirectories(t *testing.T) {
	_, repo := testutils.NewModuleRepo(t, map[string]string{
		"bool.md":                     boolDoc,
		".espalier/sessions/abc.json": `{"session_id":"abc"}`,
	})
	loader := New(loam.NewTypedRepository[ModuleMetadata](repo))

	names, err := loader.ListModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"bool"}, names)
}

func TestHidden(t *testing.T) {
	assert.True(t, hidden(".espalier/sessions/x.json"))
	assert.True(t, hidden(".git"))
	assert.False(t, hidden("lib/bool.md"))
}
