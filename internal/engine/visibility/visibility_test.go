package visibility

import (
	"testing"

	"modgraph/internal/engine/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromKeyword(t *testing.T) {
	v, ok := FromKeyword("pub")
	require.True(t, ok)
	assert.Equal(t, Public, v)

	v, ok = FromKeyword("prakāśita")
	require.True(t, ok)
	assert.Equal(t, Public, v)

	v, ok = FromKeyword("pub(crate)")
	require.True(t, ok)
	assert.Equal(t, Crate, v)

	v, ok = FromKeyword("pub(super)")
	require.True(t, ok)
	assert.Equal(t, Restricted, v)

	_, ok = FromKeyword("invalid")
	assert.False(t, ok)
}

func TestOrdering(t *testing.T) {
	assert.Less(t, Private, Restricted)
	assert.Less(t, Restricted, Crate)
	assert.Less(t, Crate, Public)

	assert.Less(t, ReachLocal, ReachModule)
	assert.Less(t, ReachModule, ReachCrate)
	assert.Less(t, ReachCrate, ReachUniverse)
	assert.Equal(t, ReachUniverse, Public.Reach())
	assert.Equal(t, ReachLocal, Private.Reach())
}

func TestPublicAccess(t *testing.T) {
	target := NewScope("crate_a", []string{"mod_a"})
	accessor := NewScope("crate_b", []string{"mod_b"})
	assert.True(t, Public.AllowsAccess(accessor, target))
}

func TestCrateAccess(t *testing.T) {
	target := NewScope("crate_a", []string{"mod_a"})
	same := NewScope("crate_a", []string{"deeply", "nested", "mod_b"})
	other := NewScope("crate_b", []string{"mod_a"})

	assert.True(t, Crate.AllowsAccess(same, target))
	assert.False(t, Crate.AllowsAccess(other, target), "module path must not matter across crates")
}

func TestPrivateAccess(t *testing.T) {
	target := NewScope("crate_a", []string{"outer", "inner"})

	assert.True(t, Private.AllowsAccess(NewScope("crate_a", []string{"outer", "inner"}), target))
	assert.False(t, Private.AllowsAccess(NewScope("crate_a", []string{"outer"}), target), "ancestor")
	assert.False(t, Private.AllowsAccess(NewScope("crate_a", []string{"outer", "inner", "leaf"}), target), "descendant")
	assert.False(t, Private.AllowsAccess(NewScope("crate_a", []string{"other"}), target))
}

func TestRestrictedAccess(t *testing.T) {
	target := NewScope("app", []string{"net", "http"})

	assert.True(t, Restricted.AllowsAccess(NewScope("app", []string{"net", "tcp"}), target), "sibling under the same parent")
	assert.True(t, Restricted.AllowsAccess(NewScope("app", []string{"net"}), target), "the parent itself")
	assert.False(t, Restricted.AllowsAccess(NewScope("app", []string{"db"}), target))

	granted := target.Allow([]string{"db"})
	assert.True(t, Restricted.AllowsAccess(NewScope("app", []string{"db"}), granted), "explicit allow-list")
	assert.False(t, Restricted.AllowsAccess(NewScope("app", []string{"db", "pool"}), granted), "allow-list is exact")
}

func TestRequired(t *testing.T) {
	target := NewScope("app", []string{"net", "http"})
	assert.Equal(t, Private, Required(NewScope("app", []string{"net", "http"}), target))
	assert.Equal(t, Restricted, Required(NewScope("app", []string{"net", "tcp"}), target))
	assert.Equal(t, Crate, Required(NewScope("app", []string{"db"}), target))
	assert.Equal(t, Public, Required(NewScope("other", []string{"db"}), target))
}

func TestScopeHierarchy(t *testing.T) {
	parent := NewScope("test", []string{"parent"})
	child := parent.Child("child")

	assert.Equal(t, []string{"parent", "child"}, child.ModulePath)
	assert.True(t, child.IsChildOf(parent))
	assert.False(t, parent.IsChildOf(child))
	assert.False(t, NewScope("other", []string{"parent", "child"}).IsChildOf(parent))
	assert.Equal(t, []string{"parent"}, child.ParentModule())
	assert.Empty(t, parent.ParentModule())
	assert.Equal(t, []string{"parent"}, parent.ModulePath, "Child must not alias the parent path")
}

func TestChecker(t *testing.T) {
	checker := NewChecker(NewScope("test", []string{"main"}))
	utils := NewScope("test", []string{"utils"})
	span := source.Span{File: "main.jag", Line: 4, Column: 9}

	assert.True(t, checker.CheckAccess("pub_fn", Public, utils, span))
	assert.True(t, checker.CheckAccess("crate_fn", Crate, utils, span))
	assert.False(t, checker.CheckAccess("priv_fn", Private, utils, span))
	assert.False(t, checker.CheckAccess("other_crate_fn", Crate, NewScope("dep", []string{"x"}), span))

	require.True(t, checker.HasViolations())
	violations := checker.Violations()
	require.Len(t, violations, 2)

	first := violations[0]
	assert.Equal(t, "priv_fn", first.Symbol)
	assert.Equal(t, span, first.Location)
	assert.Equal(t, []string{"utils"}, first.DefinitionModule)
	assert.Equal(t, Private, first.Actual)
	// utils sits at the crate root, so its parent module is the root itself.
	assert.Equal(t, Restricted, first.Required)
	assert.Contains(t, first.Message, "priv_fn")
	assert.Contains(t, first.String(), "main.jag:4:9")

	assert.Equal(t, Public, violations[1].Required)

	checker.ClearViolations()
	assert.False(t, checker.HasViolations())
}

func TestCheckerScopes(t *testing.T) {
	checker := NewChecker(NewScope("test", []string{"net"}))
	checker.EnterScope("http")
	assert.Equal(t, []string{"net", "http"}, checker.Current().ModulePath)

	target := NewScope("test", []string{"net", "http"})
	assert.True(t, checker.CheckAccess("handler", Private, target, source.Span{}))

	checker.ExitScope()
	checker.ExitScope()
	checker.ExitScope()
	assert.Empty(t, checker.Current().ModulePath)
}

func TestReExport(t *testing.T) {
	assert.Equal(t, "parse", PublicReExport([]string{"text", "parse"}).Name())
	r := AliasedReExport([]string{"text", "parse"}, "p")
	assert.Equal(t, "p", r.Name())
	assert.Equal(t, Public, r.Visibility)
}
