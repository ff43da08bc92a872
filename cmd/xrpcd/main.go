package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/xrpc/internal/config"
	"github.com/danmuck/xrpc/internal/logging"
	"github.com/danmuck/xrpc/internal/observability"
	"github.com/danmuck/xrpc/server"
	"github.com/danmuck/xrpc/xmlrpc"
)

type addArgs struct {
	A int32 `xmlrpc:"a"`
	B int32 `xmlrpc:"b"`
}

func main() {
	logging.Init("xrpcd")
	configPath := flag.String("config", "cmd/xrpcd/config.toml", "path to server config")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	log.Info().Str("path", *configPath).Msg("loaded server config")
	// An explicit XRPC_LOG_LEVEL wins over the config file.
	if os.Getenv(logging.EnvLogLevel) == "" {
		logging.SetLevel(cfg.LogLevel)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observability.ServeMetrics(cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics endpoint stopped")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint started")
	}

	srv := server.New()
	srv.RegisterValue("echo", func(params []xmlrpc.Value) xmlrpc.Response {
		return xmlrpc.Success(params...)
	})
	server.Register(srv, "math.add", func(args addArgs) (int32, *xmlrpc.Fault) {
		return args.A + args.B, nil
	})

	bound, err := srv.Bind(cfg.ListenAddr, config.BindOptions(cfg)...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bind")
	}
	log.Info().
		Str("addr", bound.LocalAddr().String()).
		Bool("udp", cfg.EnableUDP).
		Msg("server started")
	if err := bound.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
