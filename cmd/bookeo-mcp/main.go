// Command bookeo-mcp runs the Bookeo MCP server. The default transport is
// stdio; --transport sse starts a network listener instead.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookeo-tools/bookeo-mcp/pkg/bookeo"
	"github.com/bookeo-tools/bookeo-mcp/pkg/logging"
	"github.com/bookeo-tools/bookeo-mcp/pkg/tools"
)

const (
	serverName    = "Bookeo"
	serverVersion = "0.1.0"
)

func main() {
	// Optional .env file, same lookup as the plain environment.
	_ = godotenv.Load()

	transport := flag.String("transport", "stdio", "Transport type: stdio or sse")
	host := flag.String("host", "127.0.0.1", "Host for SSE transport")
	port := flag.Int("port", 8000, "Port for SSE transport")
	metricsAddr := flag.String("metrics-addr", "", "Optional listen address for Prometheus metrics (e.g. :9090)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(*logLevel),
		Output: os.Stderr,
	})

	client, err := bookeo.NewFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Bookeo client")
	}
	defer client.Close()

	mcpServer := server.NewMCPServer(serverName, serverVersion, server.WithRecovery())
	tools.New(client).Register(mcpServer)

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	switch *transport {
	case "sse":
		addr := fmt.Sprintf("%s:%d", *host, *port)
		logger.Info().Str("addr", addr).Msg("Starting Bookeo MCP server (SSE)")
		if err := server.NewSSEServer(mcpServer).Start(addr); err != nil {
			logger.Fatal().Err(err).Msg("SSE server failed")
		}
	case "stdio":
		logger.Info().Msg("Starting Bookeo MCP server (stdio)")
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal().Err(err).Msg("Stdio server failed")
		}
	default:
		logger.Fatal().Str("transport", *transport).Msg("Unknown transport (want stdio or sse)")
	}
}

// serveMetrics exposes the Prometheus registry on its own listener, kept
// separate from the MCP transport.
func serveMetrics(addr string) {
	logger := logging.NewLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)

	logger.Info().Str("addr", addr).Msg("Starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
