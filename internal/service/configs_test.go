package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/PassHash/internal/exchange"
	"github.com/atinyakov/PassHash/internal/models"
	"github.com/atinyakov/PassHash/internal/repository"
	"github.com/atinyakov/PassHash/internal/service"
)

type mockRepo struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error
}

func (m *mockRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRepo) Set(ctx context.Context, key, value string) error {
	return m.SetFunc(ctx, key, value)
}

// fixedClock returns a clock that starts at start and advances by step on
// every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(step)
		return t
	}
}

var epoch = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

func newService(t *testing.T) (*service.ConfigService, *repository.MemoryStore) {
	t.Helper()
	repo := repository.NewMemoryStore()
	return service.NewConfigService(repo, service.WithClock(fixedClock(epoch, time.Second))), repo
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	cfg, err := svc.Save(ctx, models.NewConfig{Name: "mail", Text: "mail.example.com", Algorithm: models.SHA384, VisualizationMethod: models.AndroidPattern})
	require.NoError(t, err)

	assert.Equal(t, "1704164645000", cfg.ID)
	assert.Equal(t, epoch.UnixMilli(), cfg.Timestamp)
	assert.Equal(t, models.SHA384, cfg.Algorithm)

	raw, ok, _ := repo.Get(ctx, service.StoreKey)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"1704164645000","name":"mail","text":"mail.example.com","algorithm":"SHA384","visualizationMethod":"androidPattern","timestamp":1704164645000}]`, raw)
}

func TestSave_Defaults(t *testing.T) {
	svc, _ := newService(t)
	cfg, err := svc.Save(context.Background(), models.NewConfig{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAlgorithm, cfg.Algorithm)
	assert.Equal(t, models.Keypad, cfg.VisualizationMethod)
}

func TestSave_EmptyName(t *testing.T) {
	svc, repo := newService(t)
	_, err := svc.Save(context.Background(), models.NewConfig{Name: "   ", Text: "x"})
	assert.ErrorIs(t, err, service.ErrEmptyName)

	_, ok, _ := repo.Get(context.Background(), service.StoreKey)
	assert.False(t, ok, "nothing must be written")
}

func TestSave_NormalizesAlgorithmLabel(t *testing.T) {
	svc, _ := newService(t)
	cfg, err := svc.Save(context.Background(), models.NewConfig{Name: "n", Algorithm: "sha-512"})
	require.NoError(t, err)
	assert.Equal(t, models.SHA512, cfg.Algorithm)
}

func TestSave_RejectsUnknownValues(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.NewConfig{Name: "n", Algorithm: "foo"})
	assert.ErrorIs(t, err, service.ErrUnknownAlgorithm)

	_, err = svc.Save(ctx, models.NewConfig{Name: "n", VisualizationMethod: "slider"})
	assert.ErrorIs(t, err, service.ErrUnknownMethod)

	_, ok, _ := repo.Get(ctx, service.StoreKey)
	assert.False(t, ok, "nothing must be written")
}

func TestSave_UniqueIDsWithinSameMillisecond(t *testing.T) {
	repo := repository.NewMemoryStore()
	svc := service.NewConfigService(repo, service.WithClock(func() time.Time { return epoch }))
	ctx := context.Background()

	a, err := svc.Save(ctx, models.NewConfig{Name: "a"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.NewConfig{Name: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "1704164645001", b.ID)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Save(ctx, models.NewConfig{Name: name})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "third", list[2].Name)
}

func TestList_Empty(t *testing.T) {
	svc, _ := newService(t)
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestList_CorruptStoredJSONIsEmpty(t *testing.T) {
	repo := repository.NewMemoryStore()
	_ = repo.Set(context.Background(), service.StoreKey, "{broken")
	svc := service.NewConfigService(repo)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_RepoError(t *testing.T) {
	wantErr := errors.New("disk gone")
	svc := service.NewConfigService(&mockRepo{
		GetFunc: func(context.Context, string) (string, bool, error) { return "", false, wantErr },
	})
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestSave_RepoSetError(t *testing.T) {
	wantErr := errors.New("read-only")
	svc := service.NewConfigService(&mockRepo{
		GetFunc: func(context.Context, string) (string, bool, error) { return "", false, nil },
		SetFunc: func(context.Context, string, string) error { return wantErr },
	})
	_, err := svc.Save(context.Background(), models.NewConfig{Name: "n"})
	assert.ErrorIs(t, err, wantErr)
}

func TestGetAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, _ := svc.Save(ctx, models.NewConfig{Name: "a"})
	b, _ := svc.Save(ctx, models.NewConfig{Name: "b"})

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	removed, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	removed, err = svc.Delete(ctx, "nonexistent")
	require.NoError(t, err, "deleting an unknown id is a no-op")
	assert.False(t, removed)

	list, _ := svc.List(ctx)
	assert.Equal(t, []models.SavedConfig{b}, list)
}

func TestExportImport_SameStoreIsUnchanged(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.Save(ctx, models.NewConfig{Name: "a", Text: "x"})
	_, _ = svc.Save(ctx, models.NewConfig{Name: "b", Text: "y"})

	before, _ := svc.List(ctx)
	data, err := svc.ExportAll(ctx)
	require.NoError(t, err)

	added, err := svc.ImportAll(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	after, _ := svc.List(ctx)
	assert.Equal(t, before, after)
}

func TestExportCompressed_RoundTripIntoFreshStore(t *testing.T) {
	src, _ := newService(t)
	ctx := context.Background()
	_, _ = src.Save(ctx, models.NewConfig{Name: "a", Text: "x", Algorithm: models.RIPEMD160, VisualizationMethod: models.BankVault})
	_, _ = src.Save(ctx, models.NewConfig{Name: "b", Text: "y", Algorithm: models.SHA3})

	payload, err := src.ExportCompressed(ctx)
	require.NoError(t, err)

	dst, _ := newService(t)
	added, err := dst.ImportCompressed(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	want, _ := src.List(ctx)
	got, _ := dst.List(ctx)
	assert.Equal(t, want, got)
}

func TestImport_CollisionKeepsExisting(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	existing, _ := svc.Save(ctx, models.NewConfig{Name: "original", Text: "keep me", Algorithm: models.MD5})

	batch := `[
		{"id":"` + existing.ID + `","name":"intruder","text":"replace","algorithm":"SHA1","visualizationMethod":"bankVault","timestamp":1},
		{"id":"other","name":"new","text":"n","algorithm":"SHA512","visualizationMethod":"keypad","timestamp":2}
	]`
	added, err := svc.ImportAll(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	got, err := svc.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing, got)

	list, _ := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "other", list[1].ID)
}

func TestImport_InvalidLeavesStoreUntouched(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	_, _ = svc.Save(ctx, models.NewConfig{Name: "a"})
	before, _, _ := repo.Get(ctx, service.StoreKey)

	_, err := svc.ImportAll(ctx, `[{"id":"new","name":"n","text":"t","algorithm":"MD5","visualizationMethod":"keypad","timestamp":1},{"id":5}]`)
	assert.ErrorIs(t, err, exchange.ErrInvalidPayload)

	_, err = svc.ImportCompressed(ctx, "definitely not base64!")
	assert.ErrorIs(t, err, exchange.ErrInvalidPayload)

	after, _, _ := repo.Get(ctx, service.StoreKey)
	assert.Equal(t, before, after)
}

func TestImport_NothingNewSkipsWrite(t *testing.T) {
	writes := 0
	svc := service.NewConfigService(&mockRepo{
		GetFunc: func(context.Context, string) (string, bool, error) {
			return `[{"id":"1","name":"n","text":"t","algorithm":"MD5","visualizationMethod":"keypad","timestamp":1}]`, true, nil
		},
		SetFunc: func(context.Context, string, string) error { writes++; return nil },
	})

	added, err := svc.ImportAll(context.Background(), `[{"id":"1","name":"x","text":"y","algorithm":"SHA1","visualizationMethod":"keypad","timestamp":9}]`)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, writes)
}
