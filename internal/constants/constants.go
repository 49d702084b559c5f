package constants

import "time"

// Environment and files
const (
	// DefaultConfigFile путь к конфигурации по умолчанию
	DefaultConfigFile = "upstreams.json"
	// DefaultEnvFile необязательный .env файл рядом с бинарником
	DefaultEnvFile = ".env"
	// EnvConfigPath переопределяет путь к конфигурации
	EnvConfigPath = "UPSTREAM_CONFIG"
	// EnvDebug включает debug логирование ("1", "true")
	EnvDebug = "UPSTREAM_DEBUG"
)

// Proxy URL schemes
const (
	// SchemeSOCKS5H SOCKS5 с разрешением имен на стороне прокси
	SchemeSOCKS5H = "socks5h"
	// SchemeSOCKS5 SOCKS5 (принимается билдером, селектор его не выдает)
	SchemeSOCKS5 = "socks5"
	// SchemeSOCKS4 SOCKS4
	SchemeSOCKS4 = "socks4"
)

// HTTP client defaults
const (
	// DefaultClientTimeout общий таймаут запроса
	DefaultClientTimeout = 30 * time.Second
	// DefaultDialTimeout таймаут установки TCP соединения (до прокси или цели)
	DefaultDialTimeout = 10 * time.Second
	// DefaultIdleConnTimeout время жизни idle соединения в пуле
	DefaultIdleConnTimeout = 90 * time.Second
	// DefaultMaxIdleConns размер пула idle соединений
	DefaultMaxIdleConns = 100
	// DefaultUserAgent User-Agent по умолчанию
	DefaultUserAgent = "upstreamclient/1.0"
)

// Probe limits
const (
	// MaxProbeBodySize сколько байт тела ответа читает probe
	MaxProbeBodySize = 1 << 20
)

// Component names for logging
const (
	// ComponentConfig имя компонента для логирования config
	ComponentConfig = "config"
	// ComponentUpstream имя компонента для логирования upstream selector
	ComponentUpstream = "upstream"
	// ComponentHTTPClient имя компонента для логирования client builder
	ComponentHTTPClient = "httpclient"
	// ComponentOutbound имя компонента для логирования outbound
	ComponentOutbound = "outbound"
	// ComponentProbe имя компонента для логирования probe
	ComponentProbe = "probe"
)
