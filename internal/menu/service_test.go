package menu

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/registry"
	"github.com/keshon/helpdeck/internal/render"
)

// fakeEngine stands in for the headless browser: it echoes the HTML back as
// the "image" and counts shots.
type fakeEngine struct {
	shots  atomic.Int32
	closed atomic.Bool
}

func (f *fakeEngine) Screenshot(ctx context.Context, html string) ([]byte, error) {
	f.shots.Add(1)
	return []byte(html), nil
}

func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

func newTestService(t *testing.T, src registry.Source, settings *config.MenuSettings) (*Service, *fakeEngine) {
	t.Helper()
	log := zap.NewNop().Sugar()
	engine := &fakeEngine{}
	icons := NewIconResolver(t.TempDir(), log)
	return &Service{
		wakePrefix: "!",
		settings:   settings,
		collector:  NewCollector(src, settings, icons, log),
		presenter:  NewPresenter(settings, t.TempDir(), icons, log),
		templates:  render.NewTemplates("", log),
		engine:     engine,
		cache:      render.NewMemoryCache(log),
		log:        log,
	}, engine
}

func TestFindPlugin(t *testing.T) {
	plugins := []*PluginInfo{
		{Name: "music", DisplayName: "Music Player"},
		{Name: "musiclib", DisplayName: "Library"},
		{Name: "mod", DisplayName: "Moderation"},
	}

	assert.Equal(t, "music", findPlugin(plugins, "music").Name, "exact name wins over substring")
	assert.Equal(t, "mod", findPlugin(plugins, "Moderation").Name, "display name matches")
	assert.Equal(t, "musiclib", findPlugin(plugins, "lib").Name, "substring fallback")
	assert.Equal(t, "music", findPlugin(plugins, "  MUSIC  ").Name, "case and space insensitive")
	assert.Nil(t, findPlugin(plugins, ""))
	assert.Nil(t, findPlugin(plugins, "zzz"))
}

func TestMainMenuEmptyCatalog(t *testing.T) {
	svc, _ := newTestService(t, registry.New(), &config.MenuSettings{})

	_, err := svc.MainMenu(context.Background(), false)

	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestSubMenuUnknownPlugin(t *testing.T) {
	svc, _ := newTestService(t, demoRegistry(), &config.MenuSettings{})

	_, err := svc.SubMenu(context.Background(), "nope", false)

	assert.ErrorIs(t, err, ErrPluginNotFound)
}

func TestMainMenuCachesAcrossCalls(t *testing.T) {
	svc, engine := newTestService(t, demoRegistry(), &config.MenuSettings{})

	first, err := svc.MainMenu(context.Background(), false)
	require.NoError(t, err)
	assert.Contains(t, string(first), "Help Menu")

	second, err := svc.MainMenu(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), engine.shots.Load(), "identical content must hit the cache")
}

func TestSubMenuRendersPlugin(t *testing.T) {
	svc, _ := newTestService(t, demoRegistry(), &config.MenuSettings{})

	img, err := svc.SubMenu(context.Background(), "music", false)
	require.NoError(t, err)
	assert.Contains(t, string(img), "!play")
}

func TestPrewarmRendersAndEvicts(t *testing.T) {
	svc, engine := newTestService(t, demoRegistry(), &config.MenuSettings{})

	// Seed a stale entry from a previous generation.
	stale := "main_menu_00000000000000000000000000000000"
	_, err := svc.cache.GetOrRender(context.Background(), stale,
		func(ctx context.Context) ([]byte, error) { return []byte("old"), nil })
	require.NoError(t, err)

	svc.prewarmDone = make(chan struct{})
	go svc.prewarm(context.Background())
	select {
	case <-svc.prewarmDone:
	case <-time.After(30 * time.Second):
		t.Fatal("prewarm did not finish")
	}

	// Main menu in both visibilities plus one sub menu, each rendered once,
	// with the admin variants deduplicated by content.
	assert.GreaterOrEqual(t, engine.shots.Load(), int32(2))

	img, err := svc.MainMenu(context.Background(), false)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("old"), img)

	renders := 0
	_, err = svc.cache.GetOrRender(context.Background(), stale,
		func(ctx context.Context) ([]byte, error) { renders++; return []byte("new"), nil })
	require.NoError(t, err)
	assert.Equal(t, 1, renders, "stale entry must have been evicted")
}

func TestPrewarmStopsOnCancel(t *testing.T) {
	svc, engine := newTestService(t, demoRegistry(), &config.MenuSettings{})
	svc.prewarmDone = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go svc.prewarm(ctx)

	select {
	case <-svc.prewarmDone:
	case <-time.After(5 * time.Second):
		t.Fatal("prewarm did not observe cancellation")
	}
	assert.Zero(t, engine.shots.Load())
}

func TestCloseShutsDownEngine(t *testing.T) {
	svc, engine := newTestService(t, demoRegistry(), &config.MenuSettings{})
	svc.StartPrewarm()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Close(ctx))
	assert.True(t, engine.closed.Load())
}
