package outbound

import (
	"context"
	"net"
	"time"
)

// DirectOutbound реализует прямое подключение
type DirectOutbound struct {
	dialer *net.Dialer
}

// NewDirectOutbound создает новый direct outbound
func NewDirectOutbound() *DirectOutbound {
	return NewDirectOutboundWithTimeout(0)
}

// NewDirectOutboundWithTimeout создает direct outbound с таймаутом подключения (0 - без таймаута)
func NewDirectOutboundWithTimeout(timeout time.Duration) *DirectOutbound {
	return &DirectOutbound{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		},
	}
}

// Dial устанавливает прямое TCP соединение
func (d *DirectOutbound) Dial(network, address string) (net.Conn, error) {
	return d.dialer.Dial(network, address)
}

// DialContext устанавливает прямое TCP соединение с учетом ctx
func (d *DirectOutbound) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.dialer.DialContext(ctx, network, address)
}
