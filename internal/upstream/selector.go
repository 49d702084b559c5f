// Package upstream выбирает upstream прокси для исходящего HTTP трафика
// и строит для него URL подключения.
package upstream

import (
	"strings"

	"example.com/me/upstreamclient/config"
	"example.com/me/upstreamclient/internal/constants"
)

// Selection выбранный upstream
type Selection struct {
	Index    int
	Upstream config.UpstreamConfig
	URL      string
}

// SelectProxy выбирает upstream для SOCKS трафика и возвращает его URL.
// ok == false означает "без прокси".
func SelectProxy(upstreams []config.UpstreamConfig) (proxyURL string, ok bool) {
	sel, ok := Select(upstreams)
	if !ok {
		return "", false
	}
	return sel.URL, true
}

// Select выбирает upstream для SOCKS трафика.
//
// Сначала просматриваются включенные upstream без scopes, затем все включенные,
// в порядке списка. Выбирается первый upstream, для которого строится URL.
// Select не пишет логов и не меняет upstreams; решение логирует вызывающий.
func Select(upstreams []config.UpstreamConfig) (Selection, bool) {
	for i, u := range upstreams {
		if !u.Enabled || strings.TrimSpace(u.Scopes) != "" {
			continue
		}
		if proxyURL, ok := ProxyURL(u); ok {
			return Selection{Index: i, Upstream: u, URL: proxyURL}, true
		}
	}

	for i, u := range upstreams {
		if !u.Enabled {
			continue
		}
		if proxyURL, ok := ProxyURL(u); ok {
			return Selection{Index: i, Upstream: u, URL: proxyURL}, true
		}
	}

	return Selection{}, false
}

// ProxyURL строит URL подключения к upstream.
// Для DirectUpstream URL не существует.
func ProxyURL(u config.UpstreamConfig) (string, bool) {
	return renderURL(u, EncodeCredential)
}

// Describe возвращает URL upstream для логов, пароль заменяется на "***"
func Describe(u config.UpstreamConfig) string {
	if _, ok := u.Type.(config.DirectUpstream); ok {
		return config.TypeDirect
	}

	seenUser := false
	s, ok := renderURL(u, func(v string) string {
		// первый компонент - имя пользователя, второй - пароль
		if !seenUser {
			seenUser = true
			return EncodeCredential(v)
		}
		return "***"
	})
	if !ok {
		return "unknown"
	}
	return s
}

func renderURL(u config.UpstreamConfig, encode func(string) string) (string, bool) {
	switch t := u.Type.(type) {
	case config.Socks5Upstream:
		auth := ""
		switch {
		case t.Username != nil && t.Password != nil:
			auth = encode(*t.Username) + ":" + encode(*t.Password) + "@"
		case t.Username != nil:
			auth = encode(*t.Username) + "@"
		}
		// socks5h: имя хоста разрешает прокси, а не мы
		return constants.SchemeSOCKS5H + "://" + auth + t.Address, true
	case config.Socks4Upstream:
		auth := ""
		if t.UserID != nil {
			auth = encode(*t.UserID) + "@"
		}
		return constants.SchemeSOCKS4 + "://" + auth + t.Address, true
	case config.DirectUpstream:
		return "", false
	default:
		return "", false
	}
}

// EncodeCredential кодирует имя пользователя или пароль для вставки в URL.
// Без изменений остаются ASCII буквы, цифры и "*-._", остальные байты
// кодируются как %XX; пробел кодируется как %20, чтобы net/url
// декодировал userinfo обратно в исходную строку.
func EncodeCredential(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isCredentialSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isCredentialSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '*' || c == '-' || c == '.' || c == '_':
		return true
	}
	return false
}
