package config

import (
	"strings"

	"github.com/danmuck/xrpc/server"
)

// BindOptions converts the declarative file settings into the options
// server.Bind understands.
func BindOptions(cfg ServerConfig) []server.Option {
	var opts []server.Option
	if cfg.EnableUDP {
		opts = append(opts, server.WithUDP())
	}
	if cfg.Introspection {
		opts = append(opts, server.WithIntrospection())
	}
	if strings.TrimSpace(cfg.ServerIdent) != "" {
		opts = append(opts, server.WithServerIdent(cfg.ServerIdent))
	}
	return opts
}
