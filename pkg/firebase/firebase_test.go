package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebaseNotConfigured(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestInitFirebaseMissingFile(t *testing.T) {
	_, err := InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
