// Package server exposes an HTTP preview of the rendered menus, useful for
// iterating on custom templates without Discord round-trips.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/menu"
)

type Server struct {
	addr string
	svc  *menu.Service
	log  *zap.SugaredLogger
}

func New(addr string, svc *menu.Service, log *zap.SugaredLogger) *Server {
	return &Server{addr: addr, svc: svc, log: log}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/menu.png", s.handleMainMenu)
	router.GET("/menu/:plugin", s.handleSubMenu)

	srv := &http.Server{Addr: s.addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleMainMenu(c *gin.Context) {
	img, err := s.svc.MainMenu(c.Request.Context(), c.Query("admin") == "1")
	switch {
	case errors.Is(err, menu.ErrEmptyCatalog):
		c.JSON(http.StatusNotFound, gin.H{"error": "no plugin commands available"})
	case err != nil:
		s.log.Errorw("preview main menu failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render failed"})
	default:
		c.Data(http.StatusOK, "image/png", img)
	}
}

func (s *Server) handleSubMenu(c *gin.Context) {
	query := strings.TrimSuffix(c.Param("plugin"), ".png")
	img, err := s.svc.SubMenu(c.Request.Context(), query, c.Query("admin") == "1")
	switch {
	case errors.Is(err, menu.ErrPluginNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plugin not found"})
	case err != nil:
		s.log.Errorw("preview sub menu failed", "plugin", query, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render failed"})
	default:
		c.Data(http.StatusOK, "image/png", img)
	}
}
