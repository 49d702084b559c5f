package httpclient

import (
	"net/http"
	"time"

	"example.com/me/upstreamclient/config"
	"example.com/me/upstreamclient/internal/constants"
)

type options struct {
	timeout         time.Duration
	dialTimeout     time.Duration
	idleConnTimeout time.Duration
	maxIdleConns    int
	userAgent       string
	caFile          string
	tlsSkipVerify   bool
}

func defaultOptions() options {
	return options{
		timeout:         constants.DefaultClientTimeout,
		dialTimeout:     constants.DefaultDialTimeout,
		idleConnTimeout: constants.DefaultIdleConnTimeout,
		maxIdleConns:    constants.DefaultMaxIdleConns,
	}
}

// Option настраивает HTTP клиент
type Option func(*options)

// WithTimeout общий таймаут запроса (0 - без таймаута)
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithDialTimeout таймаут установки TCP соединения
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithIdleConnTimeout время жизни idle соединения
func WithIdleConnTimeout(d time.Duration) Option {
	return func(o *options) { o.idleConnTimeout = d }
}

// WithMaxIdleConns размер пула idle соединений
func WithMaxIdleConns(n int) Option {
	return func(o *options) { o.maxIdleConns = n }
}

// WithUserAgent User-Agent, который выставляется, если запрос его не задал
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithCAFile добавляет PEM сертификаты из файла к доверенным корневым
func WithCAFile(path string) Option {
	return func(o *options) { o.caFile = path }
}

// WithTLSSkipVerify отключает проверку сертификатов целевых серверов
func WithTLSSkipVerify(skip bool) Option {
	return func(o *options) { o.tlsSkipVerify = skip }
}

// OptionsFromConfig переводит config.ClientConfig в опции.
// Нулевые и отрицательные значения оставляют значения по умолчанию.
func OptionsFromConfig(c config.ClientConfig) []Option {
	var opts []Option
	if c.TimeoutSeconds > 0 {
		opts = append(opts, WithTimeout(c.Timeout()))
	}
	if c.DialTimeoutSeconds > 0 {
		opts = append(opts, WithDialTimeout(c.DialTimeout()))
	}
	if c.IdleConnTimeoutSeconds > 0 {
		opts = append(opts, WithIdleConnTimeout(c.IdleConnTimeout()))
	}
	if c.MaxIdleConns > 0 {
		opts = append(opts, WithMaxIdleConns(c.MaxIdleConns))
	}
	return append(opts,
		WithUserAgent(c.UserAgent),
		WithCAFile(c.CAFile),
		WithTLSSkipVerify(c.TLSSkipVerify),
	)
}

// userAgentTransport выставляет User-Agent по умолчанию
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// RoundTripper не должен изменять исходный запрос
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// CloseIdleConnections пробрасывается в базовый транспорт
func (t *userAgentTransport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
