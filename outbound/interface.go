package outbound

import (
	"context"
	"net"
)

// Outbound интерфейс для outbound обработчиков.
// Совпадает с golang.org/x/net/proxy.Dialer.
type Outbound interface {
	// Dial устанавливает соединение с целевым адресом
	Dial(network, address string) (net.Conn, error)
}

// ContextOutbound outbound с поддержкой отмены через context.
// Совпадает с golang.org/x/net/proxy.ContextDialer.
type ContextOutbound interface {
	Outbound
	// DialContext устанавливает соединение с учетом ctx
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
