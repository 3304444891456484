package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Brawl345/forumbot/plugin"
	"github.com/Brawl345/forumbot/plugin/admin"
	"github.com/gin-gonic/gin"
)

const maxBodySize = 4 << 20

type (
	Server struct {
		Engine    *gin.Engine
		processor *Processor
		manager   *managerService
	}

	ServerConfig struct {
		Token      string
		PrintHooks bool
	}
)

func NewServer(processor *Processor, cfg ServerConfig) *Server {
	s := &Server{
		Engine:    gin.New(),
		processor: processor,
		manager:   processor.managerService,
	}

	s.Engine.Use(gin.Recovery(), RequestLogger())
	if cfg.PrintHooks {
		s.Engine.Use(PrintHooks())
	}

	s.Engine.GET("/health", s.onHealth)

	protected := s.Engine.Group("/")
	protected.Use(RequireToken(cfg.Token))
	{
		protected.POST("/hooks/:hook", s.onAction)
		protected.POST("/filters/:hook", s.onFilter)
		protected.POST("/requests/:request", s.onRequest)

		protected.GET("/admin/plugins/openai", s.request(admin.RequestPage))
		protected.GET("/admin/plugins/openai/settings", s.request(admin.RequestGet))
		protected.PUT("/admin/plugins/openai/settings", s.request(admin.RequestSave))

		protected.GET("/admin/plugins", s.onListPlugins)
		protected.POST("/admin/plugins/:name/enable", s.onTogglePlugin(true))
		protected.POST("/admin/plugins/:name/disable", s.onTogglePlugin(false))
	}

	return s
}

// Serve runs the HTTP server until ctx is done and then waits for in-flight hook handlers.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Msgf("Listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	log.Info().Msg("Waiting for running hook handlers")
	s.processor.Wait()

	return err
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		return nil, errors.Join(plugin.ErrBadPayload, err)
	}
	return body, nil
}

func (s *Server) onHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"hooks":  s.processor.Hooks(),
	})
}

func (s *Server) onAction(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	dispatched := s.processor.Dispatch(c.Request.Context(), c.Param("hook"), body)
	c.JSON(http.StatusAccepted, gin.H{"dispatched": dispatched})
}

func (s *Server) onFilter(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.processor.Filter(c.Request.Context(), c.Param("hook"), body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) onRequest(c *gin.Context) {
	s.request(c.Param("request"))(c)
}

func (s *Server) request(hook string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Method != http.MethodGet {
			var err error
			body, err = readBody(c)
			if err != nil {
				respondError(c, err)
				return
			}
		}

		result, err := s.processor.Request(c.Request.Context(), hook, body)
		if err != nil {
			respondError(c, err)
			return
		}

		respondOK(c, result)
	}
}

func (s *Server) onListPlugins(c *gin.Context) {
	type pluginState struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}

	var states []pluginState
	for _, plg := range s.manager.Plugins() {
		states = append(states, pluginState{
			Name:    plg.Name(),
			Enabled: s.manager.IsPluginEnabled(plg.Name()),
		})
	}

	respondOK(c, states)
}

func (s *Server) onTogglePlugin(enable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		var err error
		if enable {
			err = s.manager.EnablePlugin(name)
		} else {
			err = s.manager.DisablePlugin(name)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		log.Info().
			Str("plugin", name).
			Bool("enabled", enable).
			Msg("Toggled plugin")

		respondOK(c, gin.H{"name": name, "enabled": enable})
	}
}
