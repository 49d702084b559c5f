package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Upstream type names in JSON
const (
	TypeSocks5 = "socks5"
	TypeSocks4 = "socks4"
	TypeDirect = "direct"
)

// UpstreamType закрытое множество типов upstream.
// Реализации: Socks5Upstream, Socks4Upstream, DirectUpstream.
type UpstreamType interface {
	// TypeName возвращает имя типа в конфигурации
	TypeName() string
	sealed()
}

// Socks5Upstream upstream через SOCKS5 прокси
type Socks5Upstream struct {
	Address   string
	Username  *string
	Password  *string
	Interface string
}

// Socks4Upstream upstream через SOCKS4 прокси
type Socks4Upstream struct {
	Address   string
	UserID    *string
	Interface string
}

// DirectUpstream прямое подключение без прокси
type DirectUpstream struct {
	Interface string
}

func (Socks5Upstream) TypeName() string { return TypeSocks5 }
func (Socks4Upstream) TypeName() string { return TypeSocks4 }
func (DirectUpstream) TypeName() string { return TypeDirect }

func (Socks5Upstream) sealed() {}
func (Socks4Upstream) sealed() {}
func (DirectUpstream) sealed() {}

// UpstreamConfig представляет один настроенный маршрут для исходящего трафика
type UpstreamConfig struct {
	Enabled bool
	// Scopes пустая строка означает "для всего трафика"
	Scopes string
	Type   UpstreamType
}

// upstreamJSON плоское JSON представление UpstreamConfig с дискриминатором type
type upstreamJSON struct {
	Enabled   *bool   `json:"enabled,omitempty"`
	Scopes    string  `json:"scopes,omitempty"`
	Type      string  `json:"type"`
	Address   string  `json:"address,omitempty"`
	Username  *string `json:"username,omitempty"`
	Password  *string `json:"password,omitempty"`
	UserID    *string `json:"user_id,omitempty"`
	Interface string  `json:"interface,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (u UpstreamConfig) MarshalJSON() ([]byte, error) {
	enabled := u.Enabled
	raw := upstreamJSON{
		Enabled: &enabled,
		Scopes:  u.Scopes,
	}

	switch t := u.Type.(type) {
	case Socks5Upstream:
		raw.Type = TypeSocks5
		raw.Address = t.Address
		raw.Username = t.Username
		raw.Password = t.Password
		raw.Interface = t.Interface
	case Socks4Upstream:
		raw.Type = TypeSocks4
		raw.Address = t.Address
		raw.UserID = t.UserID
		raw.Interface = t.Interface
	case DirectUpstream:
		raw.Type = TypeDirect
		raw.Interface = t.Interface
	case nil:
		return nil, fmt.Errorf("upstream type is not set")
	default:
		return nil, fmt.Errorf("unsupported upstream type: %T", u.Type)
	}

	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler
func (u *UpstreamConfig) UnmarshalJSON(data []byte) error {
	var raw upstreamJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// enabled по умолчанию true
	u.Enabled = raw.Enabled == nil || *raw.Enabled
	u.Scopes = raw.Scopes

	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case TypeSocks5:
		if raw.Address == "" {
			return fmt.Errorf("address is required for socks5 upstream")
		}
		u.Type = Socks5Upstream{
			Address:   raw.Address,
			Username:  raw.Username,
			Password:  raw.Password,
			Interface: raw.Interface,
		}
	case TypeSocks4:
		if raw.Address == "" {
			return fmt.Errorf("address is required for socks4 upstream")
		}
		u.Type = Socks4Upstream{
			Address:   raw.Address,
			UserID:    raw.UserID,
			Interface: raw.Interface,
		}
	case TypeDirect:
		u.Type = DirectUpstream{Interface: raw.Interface}
	case "":
		return fmt.Errorf("upstream type is required")
	default:
		return fmt.Errorf("unsupported upstream type: %s", raw.Type)
	}

	return nil
}

// ClientConfig параметры HTTP клиента (секунды, 0 - значение по умолчанию)
// Значения по умолчанию подставляет httpclient.OptionsFromConfig.
type ClientConfig struct {
	TimeoutSeconds         int    `json:"timeout_seconds,omitempty"`
	DialTimeoutSeconds     int    `json:"dial_timeout_seconds,omitempty"`
	IdleConnTimeoutSeconds int    `json:"idle_conn_timeout_seconds,omitempty"`
	MaxIdleConns           int    `json:"max_idle_conns,omitempty"`
	UserAgent              string `json:"user_agent,omitempty"`
	CAFile                 string `json:"ca_file,omitempty"`
	TLSSkipVerify          bool   `json:"tls_skip_verify,omitempty"` // только для тестирования
}

// Timeout возвращает общий таймаут запроса
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DialTimeout возвращает таймаут установки соединения
func (c ClientConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// IdleConnTimeout возвращает время жизни idle соединения
func (c ClientConfig) IdleConnTimeout() time.Duration {
	return time.Duration(c.IdleConnTimeoutSeconds) * time.Second
}

// Config представляет полную конфигурацию приложения
type Config struct {
	Upstreams []UpstreamConfig `json:"upstreams"`
	Client    ClientConfig     `json:"client"`
	Debug     bool             `json:"debug,omitempty"`
}
