// Package http exposes the quote and swap operations over a JSON API.
package http

import (
	"context"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/quotient-labs/swap-engine/internal/config"
	"github.com/quotient-labs/swap-engine/internal/engine"
	"github.com/quotient-labs/swap-engine/internal/http/httputil"
)

const API_VERSION = "v1"

type HTTPService struct {
	server *gohttp.Server
	conf   *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func NewHTTPService(conf *config.GeneralConfig, swapCfg *config.SwapConfig, eng *engine.Engine) *HTTPService {
	return &HTTPService{
		conf: conf,
		handlers: []httputil.IHttpHandler{
			NewQuoteHandler(eng),
			NewSwapHandler(eng, swapCfg),
		},
	}
}

// Start blocks serving requests until Stop is called.
func (svc *HTTPService) Start() error {
	if svc.conf.Env == config.ProdEnv {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	r.Use(cors.New(corsConf))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pub := r.Group("api").Group(API_VERSION)
	for _, h := range svc.handlers {
		h.SetRoutes(pub.Group(h.Root()))
	}

	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: r,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}
