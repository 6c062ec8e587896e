package server

import (
	"fmt"

	"github.com/NeuralTrust/TrustFrame/pkg/config"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustFrame/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	ProxyServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	ProxyServer struct {
		*BaseServer
	}
)

func NewProxyServer(di ProxyServerDI) *ProxyServer {
	if di.Config.Metrics.Enabled {
		prometheus.Initialize(prometheus.MetricsConfig{
			EnableLatency:         di.Config.Metrics.EnableLatency,
			EnableUpstreamLatency: di.Config.Metrics.EnableUpstream,
			EnablePerRoute:        di.Config.Metrics.EnablePerRoute,
		})
	}

	s := &ProxyServer{
		BaseServer: NewBaseServer(di.Config, di.Logger).WithRouters(di.Routers...),
	}
	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *ProxyServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.ProxyPort)
	s.logger.WithField("addr", addr).Info("starting mediation proxy server")
	return s.router.Listen(addr)
}

func (s *ProxyServer) Shutdown() error {
	s.shutdownMetrics()
	return s.router.Shutdown()
}
