package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"example.com/me/upstreamclient/config"
	"example.com/me/upstreamclient/internal/httpclient"
	"example.com/me/upstreamclient/internal/logger"
	"example.com/me/upstreamclient/internal/probe"
	"example.com/me/upstreamclient/internal/upstream"
)

func main() {
	var debug bool
	var targetURL string
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&targetURL, "url", "https://example.com/", "Target URL (http, https, ws or wss)")

	// Load configuration (this will call flag.Parse())
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set debug level after flags are parsed
	if debug || cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
		logger.Debug("main", "Debug logging enabled")
	}

	// Select upstream
	proxyURL := ""
	if sel, ok := upstream.Select(cfg.Upstreams); ok {
		proxyURL = sel.URL
		logger.Info("main", "Using upstream #%d %s (%d configured)", sel.Index, upstream.Describe(sel.Upstream), len(cfg.Upstreams))
	} else {
		logger.Info("main", "No proxy-capable upstream configured, connecting directly")
	}

	// Build client; misconfiguration aborts instead of falling back to direct
	client, err := httpclient.Build(proxyURL, httpclient.OptionsFromConfig(cfg.Client)...)
	if err != nil {
		log.Fatalf("Failed to build HTTP client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if probe.IsWebSocket(targetURL) {
		elapsed, err := probe.WebSocket(ctx, client, targetURL)
		if err != nil {
			logger.Error("main", "WebSocket probe failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("%s: websocket handshake ok in %v\n", targetURL, elapsed)
		return
	}

	result, err := probe.HTTP(ctx, client, targetURL)
	if err != nil {
		logger.Error("main", "HTTP probe failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("%s: status %d, %d bytes in %v\n", targetURL, result.StatusCode, result.BodyBytes, result.Elapsed)
}
