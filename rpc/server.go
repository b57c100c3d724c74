package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/libs/service"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/types"
)

const (
	readHeaderTimeout = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Querier answers ordering queries. It is implemented by coordinator.Coordinator.
type Querier interface {
	ComparatorByHash(hash types.CandidateHash) (*ordering.CandidateComparator, error)
	Leaves() []types.HashNumber
	Stats() ordering.Stats
}

// Server exposes the ordering state of the node over HTTP.
type Server struct {
	service.BaseService

	listenAddr string
	maxConns   int
	handler    http.Handler

	mtx      sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates new instance of Server with given configuration.
func NewServer(querier Querier, conf config.RPCConfig, logger log.Logger) *Server {
	srv := &Server{
		listenAddr: conf.ListenAddress,
		maxConns:   conf.MaxOpenConnections,
	}
	srv.BaseService = *service.NewBaseService(logger, "RPC", srv)

	h := &handler{querier: querier, logger: srv.Logger}
	srv.handler = h.router()
	if len(conf.CORSAllowedOrigins) > 0 {
		srv.Logger.Debug("CORS enabled", "origins", conf.CORSAllowedOrigins)
		srv.handler = cors.New(cors.Options{
			AllowedOrigins: conf.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}).Handler(srv.handler)
	}
	return srv
}

// NewMetricsServer creates a Server exposing Prometheus metrics under /metrics.
func NewMetricsServer(conf *config.InstrumentationConfig, logger log.Logger) *Server {
	srv := &Server{
		listenAddr: conf.PrometheusListenAddr,
		maxConns:   conf.MaxOpenConnections,
	}
	srv.BaseService = *service.NewBaseService(logger, "Prometheus", srv)

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	srv.handler = router
	return srv
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the address the server listens on, or nil if it is not listening.
func (s *Server) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// OnStart is called when Server is started (see service.BaseService for details).
func (s *Server) OnStart(ctx context.Context) error {
	if s.listenAddr == "" {
		s.Logger.Info("Listen address not specified - server will not be exposed")
		return nil
	}
	proto, addr := "tcp", s.listenAddr
	if parts := strings.SplitN(s.listenAddr, "://", 2); len(parts) == 2 {
		proto, addr = parts[0], parts[1]
	}

	listener, err := net.Listen(proto, addr)
	if err != nil {
		return err
	}
	if s.maxConns != 0 {
		s.Logger.Debug("limiting number of connections", "limit", s.maxConns)
		listener = netutil.LimitListener(listener, s.maxConns)
	}

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.mtx.Lock()
	s.server, s.listener = server, listener
	s.mtx.Unlock()

	go func() {
		s.Logger.Info("serving HTTP", "listen address", listener.Addr())
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("error while serving HTTP", "error", err)
		}
	}()
	return nil
}

// OnStop is called when Server is stopped (see service.BaseService for details).
func (s *Server) OnStop(ctx context.Context) {
	s.mtx.Lock()
	server := s.server
	s.server, s.listener = nil, nil
	s.mtx.Unlock()
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		s.Logger.Error("error while shutting down HTTP server", "error", err)
	}
}
