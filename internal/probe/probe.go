// Package probe проверяет доступность цели через собранный HTTP клиент.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/me/upstreamclient/internal/constants"
	"example.com/me/upstreamclient/internal/logger"
	"nhooyr.io/websocket"
)

// Result результат HTTP проверки
type Result struct {
	StatusCode int
	BodyBytes  int64
	Elapsed    time.Duration
}

// IsWebSocket сообщает, нужно ли проверять target через WebSocket
func IsWebSocket(target string) bool {
	t := strings.ToLower(target)
	return strings.HasPrefix(t, "ws://") || strings.HasPrefix(t, "wss://")
}

// HTTP выполняет GET target через client
func HTTP(ctx context.Context, client *http.Client, target string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxProbeBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		BodyBytes:  n,
		Elapsed:    time.Since(start),
	}
	logger.Debug(constants.ComponentProbe, "GET %s: status=%d bytes=%d elapsed=%v", target, result.StatusCode, n, result.Elapsed)
	return result, nil
}

// WebSocket открывает WebSocket соединение с target через client и закрывает его.
// Возвращает время установки соединения.
func WebSocket(ctx context.Context, client *http.Client, target string) (time.Duration, error) {
	start := time.Now()
	conn, _, err := websocket.Dial(ctx, target, &websocket.DialOptions{
		HTTPClient: client,
	})
	if err != nil {
		return 0, fmt.Errorf("websocket dial to %s failed: %w", target, err)
	}
	elapsed := time.Since(start)

	if err := conn.Close(websocket.StatusNormalClosure, "probe done"); err != nil {
		logger.Debug(constants.ComponentProbe, "WebSocket close to %s: %v", target, err)
	}

	logger.Debug(constants.ComponentProbe, "WebSocket %s: handshake in %v", target, elapsed)
	return elapsed, nil
}
