// Package logging builds the zap logger shared by the studio components.
package logging

import (
	"go.uber.org/zap"
)

// New builds a zap logger; debug enables development config and debug level.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	// CLI output goes to stdout; keep logs on stderr.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
