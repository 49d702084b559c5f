package httpclient

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProxyURL URL прокси не является корректной спецификацией прокси
	ErrInvalidProxyURL = errors.New("invalid proxy URL")
	// ErrClientBuild HTTP клиент не удалось собрать
	ErrClientBuild = errors.New("failed to build HTTP client")
)

// ConfigError ошибка конфигурации прокси.
// Kind - ErrInvalidProxyURL или ErrClientBuild.
type ConfigError struct {
	Kind error
	URL  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Kind == ErrInvalidProxyURL {
		return fmt.Sprintf("invalid SOCKS proxy URL '%s': %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is позволяет errors.Is(err, ErrInvalidProxyURL) и errors.Is(err, ErrClientBuild)
func (e *ConfigError) Is(target error) bool {
	return target == e.Kind
}
