package rentmatch

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/rentmatch/ai/mock"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
	"github.com/casavia/rentmatch/storage/badger"
)

// seedStore writes a completed corpus build of n listings to a fresh store
// directory and closes it again, the state an offline build leaves behind.
func seedStore(t *testing.T, n int) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "listings_db")
	backend, err := badger.OpenBackend(dir, false)
	require.NoError(t, err)
	repo := badger.NewCorpusRepository(backend)

	ctx := context.Background()
	listings := make([]*core.Listing, n)
	for i := range listings {
		url := fmt.Sprintf("https://rentals.example.com/%d", i)
		text := make([]float32, 3)
		text[i%3] = 1
		listings[i] = &core.Listing{
			Id:          core.IDFromContent(url),
			URL:         url,
			Platform:    "Booking.com",
			Title:       fmt.Sprintf("Rental %d", i),
			Price:       1500,
			Rooms:       2,
			Location:    core.NamedLocation("Amsterdam"),
			TextVector:  text,
			ImageVector: []float32{0, 1},
		}
	}
	if n > 0 {
		require.NoError(t, repo.PutListings(ctx, 0, listings))
	}
	require.NoError(t, repo.PutManifest(ctx, &core.Manifest{
		Count:     n,
		TextDims:  3,
		ImageDims: 2,
		BuiltAt:   time.Now().UTC(),
	}))
	require.NoError(t, backend.Close())
	return dir
}

func TestNewEngine(t *testing.T) {
	t.Run("loads a built corpus", func(t *testing.T) {
		dir := seedStore(t, 3)

		engine, err := NewEngine(context.Background(), dir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		assert.True(t, engine.Ready())
		assert.Equal(t, 3, engine.Corpus().Text.Len())
		assert.NotNil(t, engine.TextCache())
		assert.NotNil(t, engine.ImageCache())
	})

	t.Run("store without a build fails startup", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "never_built")

		engine, err := NewEngine(context.Background(), dir, WithProvider(mock.NewMockProvider()))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, engine)
	})

	t.Run("empty corpus loads but is not ready", func(t *testing.T) {
		dir := seedStore(t, 0)

		engine, err := NewEngine(context.Background(), dir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer engine.Close()

		assert.False(t, engine.Ready())
	})
}

func TestEngine_Match(t *testing.T) {
	dir := seedStore(t, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockImageEmbedder())

	engine, err := NewEngine(context.Background(), dir, WithProvider(provider))
	require.NoError(t, err)
	defer engine.Close()

	sale := &core.Listing{
		URL:         "https://sales.example.com/1",
		Title:       "Canal-side apartment",
		Description: "Bright two-room apartment on a canal",
		Price:       450000,
		Rooms:       2,
		Location:    core.NamedLocation("Amsterdam"),
	}

	results, err := engine.Match(context.Background(), sale, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Row 1 carries the text vector the mock returns for the sale.
	assert.Equal(t, "https://rentals.example.com/1", results[0].URL)
	assert.GreaterOrEqual(t, results[0].FinalScore, results[1].FinalScore)

	// The engine's embedders write through to the cache.
	count, err := engine.TextCache().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEngine_Match_RepeatedMatchIsIdentical(t *testing.T) {
	dir := seedStore(t, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockImageEmbedder())

	engine, err := NewEngine(context.Background(), dir, WithProvider(provider))
	require.NoError(t, err)
	defer engine.Close()

	sale := &core.Listing{
		URL:         "https://sales.example.com/1",
		Description: "Bright two-room apartment on a canal",
		Price:       450000,
		Rooms:       2,
		Location:    core.NamedLocation("Amsterdam"),
	}

	first, err := engine.Match(context.Background(), sale, 3)
	require.NoError(t, err)
	oracleCalls := embedder.CallCount()

	second, err := engine.Match(context.Background(), sale, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The repeat is served from the embedding cache.
	assert.Equal(t, oracleCalls, embedder.CallCount())
}

func TestEngine_Match_EmptyCorpus(t *testing.T) {
	dir := seedStore(t, 0)

	engine, err := NewEngine(context.Background(), dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.Match(context.Background(), &core.Listing{
		URL:         "https://sales.example.com/1",
		Description: "anything",
		Rooms:       core.RoomsUnknown,
	}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_Close(t *testing.T) {
	dir := seedStore(t, 1)

	engine, err := NewEngine(context.Background(), dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	assert.NoError(t, engine.Close())
}
