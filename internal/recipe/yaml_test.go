package recipe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

const book = `
recipes:
  - id: pasta
    title: Pasta
    description: Weeknight pasta
    steps:
      - description: Boil water
        timer_seconds: 300
      - description: Add pasta
        image_url: /uploads/pasta.jpg
  - id: empty
    title: Nothing yet
`

func TestLoadYAML(t *testing.T) {
	src, err := LoadYAML(strings.NewReader(book), logger.New(logger.LevelOff, nil))
	require.NoError(t, err)

	ctx := context.Background()
	list, err := src.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Nothing yet", list[0].Title)

	r, err := src.Get(ctx, "pasta")
	require.NoError(t, err)
	require.Len(t, r.Steps, 2)
	assert.Equal(t, domain.Step{Description: "Boil water", TimerSeconds: 300}, r.Steps[0])
	assert.Equal(t, "/uploads/pasta.jpg", r.Steps[1].ImageURL)
	assert.False(t, r.Steps[1].HasTimer())

	empty, err := src.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, empty.Steps)
}

func TestLoadYAMLInvalid(t *testing.T) {
	tests := map[string]struct {
		input   string
		wantErr string
	}{
		"missing id": {
			input:   "recipes:\n  - title: x\n",
			wantErr: "id is required",
		},
		"missing title": {
			input:   "recipes:\n  - id: x\n",
			wantErr: "title is required",
		},
		"negative timer": {
			input:   "recipes:\n  - id: x\n    title: X\n    steps:\n      - description: a\n        timer_seconds: -1\n",
			wantErr: "timer_seconds must be >= 0",
		},
		"duplicate id": {
			input:   "recipes:\n  - id: x\n    title: X\n  - id: x\n    title: Y\n",
			wantErr: "already exists",
		},
		"not yaml": {
			input:   "recipes: [",
			wantErr: "decoding yaml",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(test.input), logger.New(logger.LevelOff, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestLoadYAMLEmptyInput(t *testing.T) {
	src, err := LoadYAML(strings.NewReader(""), logger.New(logger.LevelOff, nil))
	require.NoError(t, err)

	list, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(book), 0o600))

	src, err := LoadFile(path, logger.New(logger.LevelOff, nil))
	require.NoError(t, err)
	_, err = src.Get(context.Background(), "pasta")
	assert.NoError(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), logger.New(logger.LevelOff, nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
