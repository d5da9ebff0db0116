package ingest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/ai/mock"
	"github.com/casavia/rentmatch/index"
	"github.com/casavia/rentmatch/storage"
	"github.com/casavia/rentmatch/storage/badger"
)

type sliceSource struct {
	raws []*RawListing
	err  error
}

func (s *sliceSource) Load(ctx context.Context) ([]*RawListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raws, nil
}

// stubURLEmbedder hands back one axis vector per URL. Pooled workers call
// it concurrently, so the counters sit behind a mutex.
type stubURLEmbedder struct {
	dims   int
	err    error
	allNil bool

	mu       sync.Mutex
	calls    int
	maxBatch int
}

func (s *stubURLEmbedder) EmbedURLs(ctx context.Context, urls []string) ([][]float32, error) {
	s.mu.Lock()
	s.calls++
	if len(urls) > s.maxBatch {
		s.maxBatch = len(urls)
	}
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	vectors := make([][]float32, len(urls))
	if s.allNil {
		return vectors, nil
	}
	for i := range urls {
		v := make([]float32, s.dims)
		v[0] = 1
		vectors[i] = v
	}
	return vectors, nil
}

func (s *stubURLEmbedder) stats() (calls, maxBatch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.maxBatch
}

func rawFixture(slug string, images ...string) *RawListing {
	return &RawListing{
		Link:     "https://www.booking.com/hotel/nl/" + slug + ".html",
		Name:     "Listing " + slug,
		Location: "Amsterdam",
		Price:    "EUR 1,500",
		RoomType: "2 Bedroom Apartment",
		Rating:   "8.2",
		Images:   images,
	}
}

// testConfig keeps batches small so three listings exercise the multi-batch
// paths, and retries fast.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.ReportInterval = 1
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.Workers = 2
	cfg.ImageDims = 4
	return cfg
}

func setupBuilder(t *testing.T, source Source, oracle ai.Embedder, images ImageURLEmbedder, cfg *Config) (*Builder, storage.CorpusRepository, *bytes.Buffer) {
	t.Helper()

	_, _, corpus, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	var progress bytes.Buffer
	b, err := NewBuilder(source, oracle, images, corpus, cfg, &progress)
	require.NoError(t, err)
	return b, corpus, &progress
}

func vecNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNewBuilder(t *testing.T) {
	source := &sliceSource{}
	oracle := mock.NewMockEmbedder()
	images := &stubURLEmbedder{dims: 4}
	_, _, corpus, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	t.Run("valid with defaults", func(t *testing.T) {
		b, err := NewBuilder(source, oracle, images, corpus, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().BatchSize, b.config.BatchSize)
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := NewBuilder(nil, oracle, images, corpus, nil, nil)
		assert.Equal(t, ErrSourceRequired, err)
	})

	t.Run("nil text embedder", func(t *testing.T) {
		_, err := NewBuilder(source, nil, images, corpus, nil, nil)
		assert.Equal(t, ErrTextEmbedderRequired, err)
	})

	t.Run("nil image embedder", func(t *testing.T) {
		_, err := NewBuilder(source, oracle, nil, corpus, nil, nil)
		assert.Equal(t, ErrImageEmbedderRequired, err)
	})

	t.Run("nil corpus", func(t *testing.T) {
		_, err := NewBuilder(source, oracle, images, nil, nil, nil)
		assert.Equal(t, ErrCorpusRequired, err)
	})
}

func TestBuilder_Run(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("canal-loft", "https://cf.example.com/a1.jpg", "https://cf.example.com/a2.jpg"),
		rawFixture("garden-flat"),
		rawFixture("attic-room", "https://cf.example.com/c1.jpg"),
	}}
	source.raws[1].Description = "Quiet studio near the park."

	images := &stubURLEmbedder{dims: 4}
	b, corpus, progress := setupBuilder(t, source, mock.NewMockEmbedder(), images, testConfig())

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	manifest, err := corpus.GetManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, manifest.Count)
	assert.Equal(t, 384, manifest.TextDims)
	assert.Equal(t, 4, manifest.ImageDims)
	assert.False(t, manifest.BuiltAt.IsZero())

	listings, err := corpus.LoadListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	// Rows keep source order.
	assert.Contains(t, listings[0].URL, "canal-loft")
	assert.Contains(t, listings[1].URL, "garden-flat")
	assert.Contains(t, listings[2].URL, "attic-room")

	for i, l := range listings {
		require.Len(t, l.TextVector, 384, "row %d", i)
		assert.InDelta(t, 1.0, vecNorm(l.TextVector), 1e-6, "row %d text vector should be unit norm", i)
		require.Len(t, l.ImageVector, 4, "row %d", i)
	}

	// The explicit description survives normalization into the corpus.
	assert.Equal(t, "Quiet studio near the park.", listings[1].Description)

	// The image-free row carries a zero vector, the others real ones.
	assert.Equal(t, []float32{0, 0, 0, 0}, listings[1].ImageVector)
	assert.InDelta(t, 1.0, vecNorm(listings[0].ImageVector), 1e-6)
	assert.InDelta(t, 1.0, vecNorm(listings[2].ImageVector), 1e-6)

	calls, _ := images.stats()
	assert.Equal(t, 2, calls, "only listings with photos reach the image embedder")

	assert.Contains(t, progress.String(), "Embedding 3 descriptions")
	assert.Contains(t, progress.String(), "Build complete.")

	// The persisted corpus loads and indexes cleanly.
	loaded, err := index.LoadCorpus(ctx, corpus, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Text.Len())
	assert.Equal(t, 384, loaded.Text.Dims())
	assert.Equal(t, 4, loaded.Image.Dims())
}

func TestBuilder_Run_CapsImagesPerListing(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("photo-heavy",
			"https://cf.example.com/1.jpg",
			"https://cf.example.com/2.jpg",
			"https://cf.example.com/3.jpg",
			"https://cf.example.com/4.jpg",
			"https://cf.example.com/5.jpg"),
	}}

	images := &stubURLEmbedder{dims: 4}
	b, _, _ := setupBuilder(t, source, mock.NewMockEmbedder(), images, testConfig())

	require.NoError(t, b.Run(context.Background()))

	_, maxBatch := images.stats()
	assert.Equal(t, 3, maxBatch, "at most MaxImagesPerListing photos per listing")
}

func TestBuilder_Run_EmptySource(t *testing.T) {
	b, corpus, _ := setupBuilder(t, &sliceSource{}, mock.NewMockEmbedder(), &stubURLEmbedder{dims: 4}, testConfig())

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = corpus.GetManifest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBuilder_Run_SkipsInvalidRecords(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("good-one"),
		{Name: "No URL at all"},
		rawFixture("good-two"),
	}}

	b, corpus, progress := setupBuilder(t, source, mock.NewMockEmbedder(), &stubURLEmbedder{dims: 4}, testConfig())

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	manifest, err := corpus.GetManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Count)
	assert.Contains(t, progress.String(), "Skipped 1 unusable")
}

func TestBuilder_Run_AllRecordsInvalid(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		{Name: "first"},
		{Name: "second"},
	}}

	b, _, _ := setupBuilder(t, source, mock.NewMockEmbedder(), &stubURLEmbedder{dims: 4}, testConfig())
	assert.ErrorIs(t, b.Run(context.Background()), ErrEmptySource)
}

func TestBuilder_Run_SourceError(t *testing.T) {
	b, _, _ := setupBuilder(t, &sliceSource{err: assert.AnError}, mock.NewMockEmbedder(), &stubURLEmbedder{dims: 4}, testConfig())
	assert.ErrorIs(t, b.Run(context.Background()), assert.AnError)
}

func TestBuilder_Run_TextOracleFailure(t *testing.T) {
	oracle := mock.NewMockEmbedder()
	oracleCalls := 0
	oracle.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		oracleCalls++
		return nil, assert.AnError
	}

	source := &sliceSource{raws: []*RawListing{rawFixture("doomed")}}
	b, corpus, _ := setupBuilder(t, source, oracle, &stubURLEmbedder{dims: 4}, testConfig())

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, oracleCalls, "persistent failures exhaust MaxRetries")

	// A failed build leaves no manifest behind.
	_, err = corpus.GetManifest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBuilder_Run_TextOracleRecovers(t *testing.T) {
	oracle := mock.NewMockEmbedder()
	oracleCalls := 0
	oracle.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		oracleCalls++
		if oracleCalls == 1 {
			return nil, errors.New("transient upstream hiccup")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0, 0, 0, 0, 0, 0}
		}
		return vectors, nil
	}

	source := &sliceSource{raws: []*RawListing{rawFixture("resilient")}}
	b, corpus, _ := setupBuilder(t, source, oracle, &stubURLEmbedder{dims: 4}, testConfig())

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	manifest, err := corpus.GetManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, manifest.TextDims)
}

func TestBuilder_Run_TextOracleCountMismatch(t *testing.T) {
	oracle := mock.NewMockEmbedder()
	oracle.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	source := &sliceSource{raws: []*RawListing{rawFixture("one"), rawFixture("two")}}
	b, _, _ := setupBuilder(t, source, oracle, &stubURLEmbedder{dims: 4}, testConfig())

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBuilder_Run_ImageEmbedderFailure(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("has-photos", "https://cf.example.com/x.jpg"),
	}}

	b, corpus, _ := setupBuilder(t, source, mock.NewMockEmbedder(), &stubURLEmbedder{dims: 4, err: assert.AnError}, testConfig())

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	_, err = corpus.GetManifest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBuilder_Run_ImageFreeCorpus(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("plain-one"),
		rawFixture("plain-two"),
	}}

	images := &stubURLEmbedder{dims: 4}
	b, corpus, _ := setupBuilder(t, source, mock.NewMockEmbedder(), images, testConfig())

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	manifest, err := corpus.GetManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, manifest.ImageDims, "configured dimensionality shapes the zero vectors")

	listings, err := corpus.LoadListings(ctx)
	require.NoError(t, err)
	for _, l := range listings {
		assert.Equal(t, []float32{0, 0, 0, 0}, l.ImageVector)
	}

	calls, _ := images.stats()
	assert.Equal(t, 0, calls)
}

func TestBuilder_Run_AllPhotosUnembeddable(t *testing.T) {
	source := &sliceSource{raws: []*RawListing{
		rawFixture("broken-photos", "https://cf.example.com/broken.jpg"),
	}}

	// Every slot nil, as if every fetch had failed and been cached as null.
	images := &stubURLEmbedder{dims: 4, allNil: true}
	b, corpus, _ := setupBuilder(t, source, mock.NewMockEmbedder(), images, testConfig())

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	listings, err := corpus.LoadListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, []float32{0, 0, 0, 0}, listings[0].ImageVector)
}
