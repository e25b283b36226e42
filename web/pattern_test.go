package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	t.Run("literal template has no params", func(t *testing.T) {
		p, err := CompilePattern("/users")
		require.NoError(t, err)
		assert.Empty(t, p.Params())
		assert.False(t, p.HasTail())
		assert.Equal(t, "/users", p.Template())
	})

	t.Run("default kind is str", func(t *testing.T) {
		p, err := CompilePattern("/users/{name}")
		require.NoError(t, err)
		require.Len(t, p.Params(), 1)
		assert.Equal(t, ParamSpec{Name: "name", Kind: KindString}, p.Params()[0])
	})

	t.Run("params preserve declaration order", func(t *testing.T) {
		p, err := CompilePattern("/users/{uid:int}/posts/{pid:int}")
		require.NoError(t, err)
		require.Len(t, p.Params(), 2)
		assert.Equal(t, "uid", p.Params()[0].Name)
		assert.Equal(t, "pid", p.Params()[1].Name)
	})

	t.Run("multipath sets tail flag", func(t *testing.T) {
		p, err := CompilePattern("/files/{filepath:multipath}")
		require.NoError(t, err)
		assert.True(t, p.HasTail())
		require.Len(t, p.Params(), 1)
		assert.Equal(t, KindMultiSegment, p.Params()[0].Kind)
	})

	t.Run("unsupported kind names the kind", func(t *testing.T) {
		_, err := CompilePattern("/users/{id:bignum}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bignum")
	})

	t.Run("unclosed parameter indicates position", func(t *testing.T) {
		_, err := CompilePattern("/users/{id")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "position 7")
	})

	t.Run("wildcards are rejected", func(t *testing.T) {
		for _, tpl := range []string{"/static/*", "/static/**"} {
			_, err := CompilePattern(tpl)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "multipath")
		}
	})

	t.Run("missing parameter name is rejected", func(t *testing.T) {
		_, err := CompilePattern("/users/{}")
		require.Error(t, err)
	})

	t.Run("duplicated parameter is rejected", func(t *testing.T) {
		_, err := CompilePattern("/{id}/{id}")
		require.Error(t, err)
	})

	t.Run("literal regex metacharacters are escaped", func(t *testing.T) {
		p, err := CompilePattern("/v1.0/data")
		require.NoError(t, err)
		assert.NotNil(t, p.captures("/v1.0/data"))
		assert.Nil(t, p.captures("/v1x0/data"))
	})
}

func TestPatternSegmentCount(t *testing.T) {
	tests := []struct {
		template string
		want     int
	}{
		{"/", 1},
		{"/users", 1},
		{"/users/{id}", 2},
		{"/users/{uid:int}/posts/{pid:int}", 4},
		{"/files/{filepath:multipath}", 2},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			p, err := CompilePattern(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.SegmentCount())
		})
	}
}

func TestCountSegments(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 1},
		{"", 1},
		{"/users", 1},
		{"/users/", 2},
		{"/a/b/c", 3},
		{"/a/b/c/", 4},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, countSegments(tt.path))
		})
	}
}

func TestKindMatching(t *testing.T) {
	t.Run("int matches digits only", func(t *testing.T) {
		p, err := CompilePattern("/users/{id:int}")
		require.NoError(t, err)
		assert.Equal(t, []string{"123"}, p.captures("/users/123"))
		assert.Nil(t, p.captures("/users/abc"))
		assert.Nil(t, p.captures("/users/12.5"))
	})

	t.Run("float matches optional fraction", func(t *testing.T) {
		p, err := CompilePattern("/price/{amount:float}")
		require.NoError(t, err)
		assert.Equal(t, []string{"19.99"}, p.captures("/price/19.99"))
		assert.Equal(t, []string{"42"}, p.captures("/price/42"))
		assert.Nil(t, p.captures("/price/abc"))
	})

	t.Run("uuid matches canonical form", func(t *testing.T) {
		p, err := CompilePattern("/sessions/{sid:uuid}")
		require.NoError(t, err)
		assert.NotNil(t, p.captures("/sessions/550e8400-e29b-41d4-a716-446655440000"))
		assert.Nil(t, p.captures("/sessions/not-a-uuid"))
		assert.Nil(t, p.captures("/sessions/550e8400e29b41d4a716446655440000"))
	})

	t.Run("str does not cross slashes", func(t *testing.T) {
		p, err := CompilePattern("/users/{name}")
		require.NoError(t, err)
		assert.Nil(t, p.captures("/users/a/b"))
	})

	t.Run("multipath crosses slashes and may be empty", func(t *testing.T) {
		p, err := CompilePattern("/files/{fp:multipath}")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/b/c"}, p.captures("/files/a/b/c"))
		assert.Equal(t, []string{""}, p.captures("/files/"))
	})
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "/users", "/users"},
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"/api", "users", "/api/users"},
		{"/v1", "/api/users", "/v1/api/users"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.prefix, tt.path))
	}
}
