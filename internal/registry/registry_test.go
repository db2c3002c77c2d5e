package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/unit"
)

const sampleDefinition = `id: custom-hasher
version: 1.0.0
name: Custom Hasher
operations:
  - name: hash
    kind: hash
  - name: check
    kind: validate
    predicate: present
`

func TestNew_Builtins(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	defs := reg.List()
	require.Len(t, defs, 3)
	assert.Equal(t, "analyzer", defs[0].ID)
	assert.Equal(t, "data-processor", defs[1].ID)
	assert.Equal(t, "deployer", defs[2].ID)

	u, def, err := reg.Get("data-processor")
	require.NoError(t, err)
	assert.Equal(t, "data-processor", def.ID)
	assert.True(t, u.Has("hash"))
	assert.True(t, u.Has("echo"))

	_, _, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestRegistry_Register(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	def := Definition{
		ID:      "extra",
		Version: "0.1.0",
		Operations: []OperationSpec{
			{Name: "echo", Kind: unit.KindEcho},
		},
	}
	require.NoError(t, reg.Register(def))

	t.Run("duplicate id", func(t *testing.T) {
		assert.Error(t, reg.Register(def))
	})

	t.Run("shadowing a builtin", func(t *testing.T) {
		builtin := def
		builtin.ID = "analyzer"
		err := reg.Register(builtin)
		assert.ErrorContains(t, err, "shadows a builtin")
	})

	t.Run("invalid definition", func(t *testing.T) {
		bad := Definition{ID: "bad", Version: "1.0.0"}
		assert.Error(t, reg.Register(bad))
	})
}

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(sampleDefinition))
	require.NoError(t, err)

	assert.Equal(t, "custom-hasher", def.ID)
	assert.Len(t, def.Operations, 2)
	assert.Equal(t, unit.PredicatePresent, def.Operations[1].Predicate)

	t.Run("empty payload", func(t *testing.T) {
		_, err := ParseDefinitionYAML([]byte("  \n"))
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseDefinitionYAML([]byte("id: x\nversion: 1.0.0\noperations:\n  - name: op\n    kind: bogus\n"))
		assert.Error(t, err)
	})
}

func TestDefinition_Validate(t *testing.T) {
	valid := Definition{
		ID:      " padded-id ",
		Version: "1.0.0",
		Operations: []OperationSpec{
			{Name: "transform", Kind: " Transform "},
		},
	}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, "padded-id", valid.Normalized().ID)
	assert.Equal(t, unit.KindTransform, valid.Normalized().Operations[0].Kind)

	tests := []struct {
		name string
		def  Definition
	}{
		{name: "missing id", def: Definition{Version: "1"}},
		{name: "missing version", def: Definition{ID: "x"}},
		{name: "no operations", def: Definition{ID: "x", Version: "1"}},
		{
			name: "duplicate operation",
			def: Definition{ID: "x", Version: "1", Operations: []OperationSpec{
				{Name: "a", Kind: unit.KindEcho},
				{Name: "a", Kind: unit.KindEcho},
			}},
		},
		{
			name: "unnamed operation",
			def: Definition{ID: "x", Version: "1", Operations: []OperationSpec{
				{Kind: unit.KindEcho},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.def.Validate())
		})
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	t.Run("loads yaml files", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "hasher.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleDefinition), 0o644))

		defs, err := LoadDefinitionDir(root)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, path, defs[0].Path)
		assert.Equal(t, "custom-hasher", defs[0].Definition.ID)
	})

	t.Run("missing dir is no components", func(t *testing.T) {
		defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "missing"))
		assert.NoError(t, err)
		assert.Nil(t, defs)
	})

	t.Run("non-yaml files are skipped", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

		defs, err := LoadDefinitionDir(root)
		assert.NoError(t, err)
		assert.Nil(t, defs)
	})
}

func TestRegistry_LoadDirAndReload(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hasher.yaml"), []byte(sampleDefinition), 0o644))

	reg, err := New()
	require.NoError(t, err)
	require.NoError(t, reg.LoadDir(root))

	_, def, err := reg.Get("custom-hasher")
	require.NoError(t, err)
	assert.Equal(t, "Custom Hasher", def.Name)

	t.Run("reload swaps plugin set", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(root, "hasher.yaml")))
		replacement := "id: replacement\nversion: 2.0.0\noperations:\n  - name: echo\n    kind: echo\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, "replacement.yaml"), []byte(replacement), 0o644))

		require.NoError(t, reg.Reload(root))

		_, _, err := reg.Get("custom-hasher")
		assert.ErrorIs(t, err, ErrUnknownComponent)
		_, _, err = reg.Get("replacement")
		assert.NoError(t, err)
		// Builtins survive reloads.
		_, _, err = reg.Get("data-processor")
		assert.NoError(t, err)
	})

	t.Run("failed reload keeps previous state", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "broken.yaml"), []byte("id: broken\n"), 0o644))

		assert.Error(t, reg.Reload(root))
		_, _, err := reg.Get("replacement")
		assert.NoError(t, err)
	})
}
