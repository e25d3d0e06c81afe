package genctx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

func TestOrderedSet(t *testing.T) {
	var s OrderedSet
	assert.True(t, s.Add("motion"))
	assert.True(t, s.Add("AnimatePresence"))
	assert.False(t, s.Add("motion"))

	assert.Equal(t, []string{"motion", "AnimatePresence"}, s.Values())
	assert.True(t, s.Has("motion"))
	assert.False(t, s.Has("animate"))
	assert.Equal(t, 2, s.Len())
}

func TestContext_CloneIsIndependent(t *testing.T) {
	ctx := New(framework.React, true)
	ctx.Imports.Add("motion")

	cp := ctx.Clone()
	cp.Imports.Add("AnimatePresence")
	cp.Dependencies.Add("motion/react")

	assert.Equal(t, []string{"motion"}, ctx.Imports.Values())
	assert.Zero(t, ctx.Dependencies.Len())
	assert.True(t, cp.TypeScript)
}
