// Package server wires the web handlers into a router and runs the HTTP
// server, with an autocert TLS path for production deployments.
package server

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/serillon/docqa/handlers"
)

type Config struct {
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
}

func SetupRoutes(ask *handlers.AskHandler, runs *handlers.RunsHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", ask.ShowForm).Methods("GET")
	r.HandleFunc("/ask", ask.Ask).Methods("POST")
	r.Handle("/runs", runs).Methods("GET")
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	return r
}

func SetupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}

// NewDevelopmentServer serves plain HTTP on the configured port.
func NewDevelopmentServer(handler http.Handler, cfg Config) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewProductionServers returns the HTTPS server with certificates
// obtained through autocert, plus the port-80 server that answers ACME
// challenges and redirects everything else to HTTPS.
func NewProductionServers(handler http.Handler, cfg Config) (httpsServer, redirectServer *http.Server) {
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	redirectServer = &http.Server{
		Addr:         ":80",
		Handler:      manager.HTTPHandler(nil),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	tlsConfig := &tls.Config{
		GetCertificate:           manager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	httpsServer = &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      handler,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return httpsServer, redirectServer
}

// Shutdown drains the given servers, allowing each up to timeout.
func Shutdown(servers []*http.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error",
				slog.String("addr", srv.Addr),
				slog.String("error", err.Error()))
		}
	}
}
