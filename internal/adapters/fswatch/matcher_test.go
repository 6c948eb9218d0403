package fswatch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/core/domain"
)

func TestMatcher_MatchFile(t *testing.T) {
	root := filepath.Join("/", "proj")

	tests := []struct {
		name     string
		patterns []string
		ignores  []string
		path     string
		want     bool
	}{
		{
			name:     "nested glob matches",
			patterns: []string{"**/*.js"},
			path:     filepath.Join(root, "src", "a.js"),
			want:     true,
		},
		{
			name:     "top level glob does not match nested",
			patterns: []string{"*.go"},
			path:     filepath.Join(root, "src", "a.go"),
			want:     false,
		},
		{
			name:     "top level glob matches top level",
			patterns: []string{"*.go"},
			path:     filepath.Join(root, "a.go"),
			want:     true,
		},
		{
			name:     "match everything",
			patterns: []string{"**"},
			path:     filepath.Join(root, "deep", "down", "file.txt"),
			want:     true,
		},
		{
			name:     "ignore wins over pattern",
			patterns: []string{"**"},
			ignores:  []string{"dist/**"},
			path:     filepath.Join(root, "dist", "bundle.js"),
			want:     false,
		},
		{
			name:     "outside root",
			patterns: []string{"**"},
			path:     filepath.Join("/", "other", "file.txt"),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(root, tt.patterns, tt.ignores)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.MatchFile(tt.path))
		})
	}
}

func TestMatcher_SkipDir(t *testing.T) {
	root := filepath.Join("/", "proj")
	m, err := NewMatcher(root, []string{"**"}, []string{"vendor"})
	require.NoError(t, err)

	assert.True(t, m.SkipDir(filepath.Join(root, ".git")))
	assert.True(t, m.SkipDir(filepath.Join(root, "sub", "node_modules")))
	assert.True(t, m.SkipDir(filepath.Join(root, "vendor")))
	assert.False(t, m.SkipDir(filepath.Join(root, "src")))
	assert.False(t, m.SkipDir(root))
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	_, err := NewMatcher("/proj", []string{"[unclosed"}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidPattern)

	_, err = NewMatcher("/proj", []string{"**"}, []string{"[unclosed"})
	require.ErrorIs(t, err, domain.ErrInvalidPattern)
}
