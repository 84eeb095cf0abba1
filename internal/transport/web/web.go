package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avstrong/campusnest/internal/auth"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/rental"
)

type Server struct {
	srv      *http.Server
	router   chi.Router
	l        *logger.Logger
	conf     Conf
	rManager *rental.Manager
	issuer   *auth.Issuer
	metrics  *metrics
	registry *prometheus.Registry
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
}

func New(ctx context.Context, conf Conf, rentalManager *rental.Manager, issuer *auth.Issuer) (*Server, error) {
	registry := prometheus.NewRegistry()

	m, err := newMetrics(registry)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	server := &Server{
		router:   router,
		l:        conf.L,
		conf:     conf,
		rManager: rentalManager,
		issuer:   issuer,
		metrics:  m,
		registry: registry,
	}

	server.addRoutes(router)

	//nolint:exhaustruct
	server.srv = &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           server.Handler(),
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	return server, nil
}

// Handler is the fully wrapped router, usable without a listener.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "campusnest-sandbox")
}

func (s *Server) Srv() *http.Server {
	return s.srv
}
