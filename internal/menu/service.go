package menu

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/registry"
	"github.com/keshon/helpdeck/internal/render"
)

const (
	templateMainMenu     = "main_menu.html"
	templateExpandedMenu = "expanded_menu.html"
	templateSubMenu      = "sub_menu.html"
)

var (
	// ErrEmptyCatalog means no plugin contributed any command.
	ErrEmptyCatalog = errors.New("no plugin commands available")
	// ErrPluginNotFound means the query matched no plugin.
	ErrPluginNotFound = errors.New("plugin not found")
)

// screenshotter is what the Service needs from the render engine.
type screenshotter interface {
	Screenshot(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Service owns the whole menu pipeline: catalog collection, payload shaping,
// template rendering, screenshotting, and the content-addressed cache. It is
// constructed and torn down explicitly; nothing here is process-global.
type Service struct {
	wakePrefix string
	settings   *config.MenuSettings
	collector  *Collector
	presenter  *Presenter
	templates  *render.Templates
	engine     screenshotter
	cache      *render.Cache
	log        *zap.SugaredLogger

	prewarmCancel context.CancelFunc
	prewarmDone   chan struct{}
	prewarmOnce   sync.Once
}

// NewService wires the pipeline from configuration.
func NewService(cfg *config.Config, settings *config.MenuSettings, src registry.Source, log *zap.SugaredLogger) (*Service, error) {
	icons := NewIconResolver(cfg.PluginsDir, log)

	customDir := ""
	if settings.CustomTemplates {
		customDir = filepath.Join(cfg.DataDir, "custom_templates")
	}

	var cache *render.Cache
	if settings.DiskCache {
		var err error
		cache, err = render.NewDiskCache(filepath.Join(cfg.DataDir, "cache"), log)
		if err != nil {
			return nil, fmt.Errorf("disk cache: %w", err)
		}
	} else {
		cache = render.NewMemoryCache(log)
	}

	return &Service{
		wakePrefix: cfg.WakePrefix,
		settings:   settings,
		collector:  NewCollector(src, settings, icons, log),
		presenter:  NewPresenter(settings, cfg.DataDir, icons, log),
		templates:  render.NewTemplates(customDir, log),
		engine:     render.NewEngine(3, log),
		cache:      cache,
		log:        log,
	}, nil
}

// MainMenu renders the main help menu for the given visibility.
func (s *Service) MainMenu(ctx context.Context, showAll bool) ([]byte, error) {
	plugins := withCommands(s.collector.Collect(showAll))
	if len(plugins) == 0 {
		return nil, ErrEmptyCatalog
	}
	name := s.mainTemplateName()
	data := s.presenter.MainMenu(plugins, s.wakePrefix, s.settings.ExpandCommands)
	return s.renderCached(ctx, name, data)
}

// SubMenu renders the detail menu for the plugin best matching query.
func (s *Service) SubMenu(ctx context.Context, query string, showAll bool) ([]byte, error) {
	plugins := s.collector.Collect(showAll)
	target := findPlugin(plugins, query)
	if target == nil {
		return nil, ErrPluginNotFound
	}
	data := s.presenter.SubMenu(target, s.wakePrefix)
	return s.renderCached(ctx, templateSubMenu, data)
}

// findPlugin matches exact name or display name first, substring second.
func findPlugin(plugins []*PluginInfo, query string) *PluginInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, p := range plugins {
		if strings.ToLower(p.Name) == q || strings.ToLower(p.DisplayName) == q {
			return p
		}
	}
	for _, p := range plugins {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.DisplayName), q) {
			return p
		}
	}
	return nil
}

func withCommands(plugins []*PluginInfo) []*PluginInfo {
	kept := plugins[:0]
	for _, p := range plugins {
		if len(p.Commands) > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}

func (s *Service) mainTemplateName() string {
	if s.settings.ExpandCommands {
		return templateExpandedMenu
	}
	return templateMainMenu
}

// renderCached goes through the content-addressed cache; the render function
// runs at most once per key among concurrent callers.
func (s *Service) renderCached(ctx context.Context, templateName string, data any) ([]byte, error) {
	key := render.Key(templateName, data)
	return s.cache.GetOrRender(ctx, key, func(ctx context.Context) ([]byte, error) {
		html, err := s.templates.Render(templateName, data)
		if err != nil {
			return nil, err
		}
		return s.engine.Screenshot(ctx, html)
	})
}

// StartPrewarm launches the background cache sweep. Safe to call once.
func (s *Service) StartPrewarm() {
	s.prewarmOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.prewarmCancel = cancel
		s.prewarmDone = make(chan struct{})
		go s.prewarm(ctx)
	})
}

// prewarm renders every reachable menu (main + per-plugin sub menus, normal
// and admin variants), then evicts cache entries and locks that no menu of
// this generation can reach. It checks for cancellation between phases so a
// shutdown never races the render engine teardown.
func (s *Service) prewarm(ctx context.Context) {
	defer close(s.prewarmDone)

	// Brief delay so a restart loop does not hammer the renderer.
	if !sleepCtx(ctx, time.Second) {
		return
	}
	s.log.Infow("cache prewarm started")

	valid := make(map[string]struct{})
	for _, showAll := range []bool{false, true} {
		if ctx.Err() != nil {
			return
		}
		s.prewarmMainMenu(ctx, showAll, valid)
	}

	if !sleepCtx(ctx, 2*time.Second) {
		return
	}
	for _, showAll := range []bool{false, true} {
		if ctx.Err() != nil {
			return
		}
		s.prewarmSubMenus(ctx, showAll, valid)
	}

	if ctx.Err() != nil {
		return
	}
	s.cache.EvictExcept(valid)
	s.log.Infow("cache prewarm finished", "entries", len(valid))
}

func (s *Service) prewarmMainMenu(ctx context.Context, showAll bool, valid map[string]struct{}) {
	plugins := withCommands(s.collector.Collect(showAll))
	if len(plugins) == 0 {
		return
	}
	name := s.mainTemplateName()
	data := s.presenter.MainMenu(plugins, s.wakePrefix, s.settings.ExpandCommands)
	valid[render.Key(name, data)] = struct{}{}
	if _, err := s.renderCached(ctx, name, data); err != nil && ctx.Err() == nil {
		s.log.Warnw("prewarm main menu failed", "show_all", showAll, "error", err)
	}
}

func (s *Service) prewarmSubMenus(ctx context.Context, showAll bool, valid map[string]struct{}) {
	plugins := withCommands(s.collector.Collect(showAll))
	for _, p := range plugins {
		if ctx.Err() != nil {
			return
		}
		data := s.presenter.SubMenu(p, s.wakePrefix)
		valid[render.Key(templateSubMenu, data)] = struct{}{}
		if _, err := s.renderCached(ctx, templateSubMenu, data); err != nil && ctx.Err() == nil {
			s.log.Warnw("prewarm sub menu failed", "plugin", p.Name, "error", err)
		}
	}
}

// Close cancels the prewarm sweep, waits for it to stop, then shuts the
// render engine down. The engine must not be closed under a live render.
func (s *Service) Close(ctx context.Context) error {
	if s.prewarmCancel != nil {
		s.prewarmCancel()
		select {
		case <-s.prewarmDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.engine.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
