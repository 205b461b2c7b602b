package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Should parse a single segment", func(t *testing.T) {
		id, err := Parse("build")
		require.NoError(t, err)
		assert.Equal(t, []string{"build"}, id.Segments())
		assert.False(t, id.Absolute())
		assert.Equal(t, "build", id.String())
	})

	t.Run("Should parse a multi-segment relative identifier", func(t *testing.T) {
		id, err := Parse("sub:build")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub", "build"}, id.Segments())
		assert.Equal(t, "sub:build", id.String())
	})

	t.Run("Should parse an absolute identifier and round-trip its leading colon", func(t *testing.T) {
		id, err := Parse(":root:sub:build")
		require.NoError(t, err)
		assert.True(t, id.Absolute())
		assert.Equal(t, []string{"root", "sub", "build"}, id.Segments())
		assert.Equal(t, ":root:sub:build", id.String())
	})

	t.Run("Should reject the empty identifier", func(t *testing.T) {
		_, err := Parse("")
		assert.Error(t, err)
	})

	t.Run("Should reject a segment starting with a digit", func(t *testing.T) {
		_, err := Parse("1build")
		assert.Error(t, err)
	})

	t.Run("Should reject a segment with an internal colon-adjacent empty part", func(t *testing.T) {
		_, err := Parse("a::b")
		assert.Error(t, err)
	})

	t.Run("Should accept underscores and hyphens within a segment", func(t *testing.T) {
		id, err := Parse("my-task_v2")
		require.NoError(t, err)
		assert.Equal(t, "my-task_v2", id.String())
	})
}

func TestJoin(t *testing.T) {
	t.Run("Should append a child segment and keep absoluteness", func(t *testing.T) {
		parent := MustParse(":root:sub")
		id, err := Join(parent, "build")
		require.NoError(t, err)
		assert.Equal(t, ":root:sub:build", id.String())
	})

	t.Run("Should reject an invalid child segment", func(t *testing.T) {
		_, err := Join(MustParse("root"), "9bad")
		assert.Error(t, err)
	})
}

func TestAncestors(t *testing.T) {
	t.Run("Should walk from the identifier up to the root", func(t *testing.T) {
		id := MustParse("root:sub:build")
		ancestors := id.Ancestors()
		require.Len(t, ancestors, 3)
		assert.Equal(t, "root:sub:build", ancestors[0].String())
		assert.Equal(t, "root:sub", ancestors[1].String())
		assert.Equal(t, "root", ancestors[2].String())
	})

	t.Run("Should return only itself for a single-segment identifier", func(t *testing.T) {
		id := MustParse("root")
		assert.Equal(t, []ID{id}, id.Ancestors())
	})
}

func TestIsShorthand(t *testing.T) {
	full := MustParse(":root:sub:build")

	t.Run("Should match a trailing suffix", func(t *testing.T) {
		assert.True(t, full.IsShorthand("sub:build"))
		assert.True(t, full.IsShorthand("build"))
		assert.True(t, full.IsShorthand(":root:sub:build"))
	})

	t.Run("Should reject a non-suffix or out-of-order match", func(t *testing.T) {
		assert.False(t, full.IsShorthand("root:build"))
		assert.False(t, full.IsShorthand("other"))
	})

	t.Run("Should reject a shorthand longer than the identifier", func(t *testing.T) {
		assert.False(t, full.IsShorthand("x:root:sub:build"))
	})
}

func TestAsPath(t *testing.T) {
	t.Run("Should join segments with the OS path separator", func(t *testing.T) {
		id := MustParse("root:sub:build")
		assert.Equal(t, "root/sub/build", filepathJoin(id))
	})
}

func filepathJoin(id ID) string {
	return id.AsPath()
}

func TestEqualAndLess(t *testing.T) {
	t.Run("Should compare equal identifiers as equal regardless of parse call", func(t *testing.T) {
		a := MustParse("root:build")
		b := MustParse("root:build")
		assert.True(t, a.Equal(b))
	})

	t.Run("Should order identifiers lexicographically by string form", func(t *testing.T) {
		a := MustParse("root:a")
		b := MustParse("root:b")
		assert.True(t, a.Less(b))
		assert.False(t, b.Less(a))
	})
}

func TestTextMarshaling(t *testing.T) {
	t.Run("Should round-trip through MarshalText/UnmarshalText", func(t *testing.T) {
		id := MustParse(":root:sub:build")
		text, err := id.MarshalText()
		require.NoError(t, err)

		var decoded ID
		require.NoError(t, decoded.UnmarshalText(text))
		assert.True(t, id.Equal(decoded))
	})
}
