package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"example.com/me/upstreamclient/internal/constants"
)

// Metrics метрики одного запроса.
// Connect - время получения соединения (SOCKS handshake и TLS входят в него);
// DNS при socks5h разрешает прокси, поэтому отдельно не измеряется.
type Metrics struct {
	TTFB         time.Duration
	Connect      time.Duration
	TLSHandshake time.Duration
	TotalLatency time.Duration
	Success      bool
	Error        string
	StatusCode   int
	BytesRead    int64
}

// Measure выполняет GET target и измеряет метрики через httptrace
func Measure(ctx context.Context, client *http.Client, target string) Metrics {
	start := time.Now()
	var m Metrics

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		m.Error = fmt.Sprintf("failed to create request: %v", err)
		m.TotalLatency = time.Since(start)
		return m
	}

	// хуки httptrace вызываются из горутин транспорта, в том числе после
	// возврата client.Do с ошибкой
	var mu sync.Mutex
	var connectStart, tlsStart time.Time
	trace := &httptrace.ClientTrace{
		// DialContext транспорта вызывается целиком внутри GetConn/GotConn
		GetConn: func(string) {
			mu.Lock()
			connectStart = time.Now()
			mu.Unlock()
		},
		GotConn: func(info httptrace.GotConnInfo) {
			mu.Lock()
			if !info.Reused && !connectStart.IsZero() {
				m.Connect = time.Since(connectStart)
			}
			mu.Unlock()
		},
		TLSHandshakeStart: func() {
			mu.Lock()
			tlsStart = time.Now()
			mu.Unlock()
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			mu.Lock()
			if !tlsStart.IsZero() {
				m.TLSHandshake = time.Since(tlsStart)
			}
			mu.Unlock()
		},
		GotFirstResponseByte: func() {
			mu.Lock()
			m.TTFB = time.Since(start)
			mu.Unlock()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	// snapshot копирует метрики под блокировкой
	snapshot := func(apply func(*Metrics)) Metrics {
		mu.Lock()
		defer mu.Unlock()
		apply(&m)
		m.TotalLatency = time.Since(start)
		return m
	}

	resp, err := client.Do(req)
	if err != nil {
		return snapshot(func(m *Metrics) { m.Error = err.Error() })
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxProbeBodySize))
	if err != nil {
		return snapshot(func(m *Metrics) {
			m.BytesRead = n
			m.Error = fmt.Sprintf("failed to read body: %v", err)
		})
	}

	return snapshot(func(m *Metrics) {
		m.BytesRead = n
		m.Success = true
		m.StatusCode = resp.StatusCode
	})
}
