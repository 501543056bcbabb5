package menu

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

//go:embed resources/default_icon.svg
var defaultIconBytes []byte

//go:embed resources/logo.svg
var defaultLogoBytes []byte

// IconResolver turns image files into embeddable data URIs. The default icon
// is encoded once and reused for the life of the resolver.
type IconResolver struct {
	pluginsDir string
	log        *zap.SugaredLogger

	defaultOnce sync.Once
	defaultURI  string
}

func NewIconResolver(pluginsDir string, log *zap.SugaredLogger) *IconResolver {
	return &IconResolver{pluginsDir: pluginsDir, log: log}
}

// PluginIcon returns the data URI of <pluginsDir>/<rootDir>/logo.png, or the
// default icon when the plugin ships none.
func (r *IconResolver) PluginIcon(rootDir string) string {
	if rootDir != "" {
		if uri := r.ReadImageDataURI(filepath.Join(r.pluginsDir, rootDir, "logo.png")); uri != "" {
			return uri
		}
	}
	return r.Default()
}

// Default returns the bundled fallback icon, memoized.
func (r *IconResolver) Default() string {
	r.defaultOnce.Do(func() {
		r.defaultURI = dataURI("image/svg+xml", defaultIconBytes)
	})
	return r.defaultURI
}

// ReadImageDataURI encodes an image file as a data URI; "" when unreadable.
func (r *IconResolver) ReadImageDataURI(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Warnw("failed to read image", "path", path, "error", err)
		return ""
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}
	return dataURI(mimeType, data)
}

func dataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
