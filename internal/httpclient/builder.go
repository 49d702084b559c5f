// Package httpclient собирает *http.Client, туннелирующий трафик через upstream прокси.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/me/upstreamclient/config"
	"example.com/me/upstreamclient/internal/constants"
	"example.com/me/upstreamclient/internal/logger"
	tlsconfig "example.com/me/upstreamclient/internal/tls"
	"example.com/me/upstreamclient/internal/upstream"
	"example.com/me/upstreamclient/outbound"
	"golang.org/x/net/proxy"
)

// Build создает HTTP клиент. Пустой proxyURL означает клиент без прокси;
// переменные окружения HTTP_PROXY и т.п. не используются.
// Иначе прокси применяется ко всем запросам (HTTP и HTTPS).
//
// Ошибки имеют тип *ConfigError. Сетевых подключений Build не выполняет.
func Build(proxyURL string, opts ...Option) (*http.Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	direct := outbound.NewDirectOutboundWithTimeout(o.dialTimeout)

	var dialer outbound.ContextOutbound = direct
	if proxyURL != "" {
		d, err := proxyDialer(proxyURL, direct)
		if err != nil {
			return nil, &ConfigError{Kind: ErrInvalidProxyURL, URL: proxyURL, Err: err}
		}
		dialer = d
	}

	client, err := finalize(dialer, o)
	if err != nil {
		return nil, &ConfigError{Kind: ErrClientBuild, URL: proxyURL, Err: err}
	}

	if proxyURL != "" {
		logger.Debug(constants.ComponentHTTPClient, "HTTP client built with proxy %s", redact(proxyURL))
	} else {
		logger.Debug(constants.ComponentHTTPClient, "HTTP client built without proxy")
	}
	return client, nil
}

// FromUpstreams выбирает upstream и собирает для него клиент
func FromUpstreams(upstreams []config.UpstreamConfig, opts ...Option) (*http.Client, error) {
	proxyURL, ok := upstream.SelectProxy(upstreams)
	if !ok {
		return Build("", opts...)
	}
	return Build(proxyURL, opts...)
}

// proxyDialer разбирает URL прокси и создает dialer для него
func proxyDialer(raw string, forward *outbound.DirectOutbound) (outbound.ContextOutbound, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if u.Scheme == "" {
		return nil, errors.New("missing scheme")
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host")
	}
	if u.Port() == "" {
		return nil, errors.New("missing port")
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return nil, errors.New("unexpected path, query or fragment")
	}

	switch strings.ToLower(u.Scheme) {
	case constants.SchemeSOCKS5, constants.SchemeSOCKS5H:
		d, err := proxy.FromURL(u, forward)
		if err != nil {
			return nil, err
		}
		if cd, ok := d.(outbound.ContextOutbound); ok {
			return cd, nil
		}
		return contextless{d}, nil

	case constants.SchemeSOCKS4:
		userID := ""
		if u.User != nil {
			if _, hasPassword := u.User.Password(); hasPassword {
				return nil, errors.New("socks4 does not support passwords")
			}
			userID = u.User.Username()
		}
		return outbound.NewSOCKS4Outbound(u.Host, userID, forward), nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}
}

// finalize собирает транспорт и клиент, проверяя опции
func finalize(dialer outbound.ContextOutbound, o options) (*http.Client, error) {
	switch {
	case o.timeout < 0:
		return nil, fmt.Errorf("negative timeout: %v", o.timeout)
	case o.dialTimeout < 0:
		return nil, fmt.Errorf("negative dial timeout: %v", o.dialTimeout)
	case o.idleConnTimeout < 0:
		return nil, fmt.Errorf("negative idle connection timeout: %v", o.idleConnTimeout)
	case o.maxIdleConns < 0:
		return nil, fmt.Errorf("negative max idle connections: %d", o.maxIdleConns)
	case strings.ContainsAny(o.userAgent, "\r\n"):
		return nil, errors.New("user agent contains line breaks")
	}

	tlsConfig, err := tlsconfig.NewClientTLSConfig(o.caFile, o.tlsSkipVerify)
	if err != nil {
		return nil, err
	}
	if o.tlsSkipVerify {
		logger.Debug(constants.ComponentHTTPClient, "TLS certificate verification disabled")
	}

	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          o.maxIdleConns,
		IdleConnTimeout:       o.idleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var rt http.RoundTripper = transport
	if o.userAgent != "" {
		rt = &userAgentTransport{base: transport, userAgent: o.userAgent}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   o.timeout,
	}, nil
}

// contextless адаптирует proxy.Dialer без DialContext
type contextless struct {
	proxy.Dialer
}

func (c contextless) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Dial(network, address)
}

// redact скрывает пароль в URL для логов
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
