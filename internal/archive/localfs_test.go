package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_WriteRead(t *testing.T) {
	storage, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte(`[{"symbol":"ABC"}]`)

	require.NoError(t, storage.Write(ctx, "runs/2020-08-01/trades.json", data))

	read, err := storage.Read(ctx, "runs/2020-08-01/trades.json")
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestLocalFS_ReadMissing(t *testing.T) {
	storage, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Read(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestLocalFS_List(t *testing.T) {
	storage, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, storage.Write(ctx, "runs/a/trades.json", []byte("a")))
	require.NoError(t, storage.Write(ctx, "runs/b/trades.json", []byte("b")))

	paths, err := storage.List(ctx, "runs")
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	empty, err := storage.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
