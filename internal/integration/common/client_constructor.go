package common

import (
	"github.com/futig/explainer-backend/internal/config"
	pkgHTTP "github.com/futig/explainer-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the shared outbound client. The bearer token from
// cfg is attached unless auth options are passed explicitly.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, auth ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	if len(auth) == 0 {
		auth = []pkgHTTP.HttpOpts{pkgHTTP.WithAuthToken(cfg.Token)}
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, auth...)...)
}
