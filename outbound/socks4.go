package outbound

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"example.com/me/upstreamclient/internal/constants"
	"example.com/me/upstreamclient/internal/logger"
	"example.com/me/upstreamclient/internal/protocol/socks4"
	"golang.org/x/net/proxy"
)

var aLongTimeAgo = time.Unix(1, 0)

// SOCKS4Outbound реализует подключение через SOCKS4 прокси.
// SOCKS4 не умеет разрешать имена на стороне прокси, поэтому имя цели
// разрешается локально в IPv4 адрес.
type SOCKS4Outbound struct {
	proxyAddress string
	userID       string
	forward      proxy.Dialer
	resolver     *net.Resolver
}

// NewSOCKS4Outbound создает новый SOCKS4 outbound.
// forward используется для подключения к самому прокси; nil означает прямое подключение.
func NewSOCKS4Outbound(proxyAddress, userID string, forward proxy.Dialer) *SOCKS4Outbound {
	if forward == nil {
		forward = NewDirectOutbound()
	}
	return &SOCKS4Outbound{
		proxyAddress: proxyAddress,
		userID:       userID,
		forward:      forward,
		resolver:     net.DefaultResolver,
	}
}

// Dial устанавливает соединение с целевым адресом через SOCKS4 прокси
func (s *SOCKS4Outbound) Dial(network, address string) (net.Conn, error) {
	return s.DialContext(context.Background(), network, address)
}

// DialContext устанавливает соединение с целевым адресом через SOCKS4 прокси с учетом ctx
func (s *SOCKS4Outbound) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network != "tcp" && network != "tcp4" {
		return nil, fmt.Errorf("unsupported network: %s", network)
	}

	request, err := s.buildConnectionRequest(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection request: %w", err)
	}

	logger.Debug(constants.ComponentOutbound, "Connecting to SOCKS4 proxy at %s", s.proxyAddress)

	conn, err := s.dialProxy(ctx)
	if err != nil {
		logger.Debug(constants.ComponentOutbound, "Failed to connect to SOCKS4 proxy %s: %v", s.proxyAddress, err)
		return nil, fmt.Errorf("failed to connect to SOCKS4 proxy: %w", err)
	}

	if err := s.performSOCKS4Handshake(ctx, conn, request); err != nil {
		conn.Close()
		logger.Debug(constants.ComponentOutbound, "SOCKS4 handshake failed for %s: %v", address, err)
		return nil, fmt.Errorf("SOCKS4 handshake failed: %w", err)
	}

	logger.Debug(constants.ComponentOutbound, "SOCKS4 connection established to %s via %s", address, s.proxyAddress)
	return conn, nil
}

func (s *SOCKS4Outbound) dialProxy(ctx context.Context) (net.Conn, error) {
	if cd, ok := s.forward.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", s.proxyAddress)
	}
	return s.forward.Dial("tcp", s.proxyAddress)
}

// performSOCKS4Handshake отправляет CONNECT request и читает ответ.
// Отмена ctx прерывает ожидание ответа прокси.
func (s *SOCKS4Outbound) performSOCKS4Handshake(ctx context.Context, conn net.Conn, request []byte) (err error) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if ctx.Done() != nil {
		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			select {
			case <-ctx.Done():
				// unblock pending Write/Read
				conn.SetDeadline(aLongTimeAgo)
			case <-stop:
			}
		}()
		defer func() {
			close(stop)
			<-done
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
		}()
	}

	if _, err := conn.Write(request); err != nil {
		return fmt.Errorf("failed to send connection request: %w", err)
	}

	if _, err := socks4.ReadResponse(conn); err != nil {
		return err
	}

	return nil
}

// buildConnectionRequest строит SOCKS4 connection request, разрешая имя хоста в IPv4
func (s *SOCKS4Outbound) buildConnectionRequest(ctx context.Context, address string) ([]byte, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address format: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ip, err = s.lookupIPv4(ctx, host)
		if err != nil {
			return nil, err
		}
	}

	return socks4.BuildRequest(ip, port, s.userID)
}

func (s *SOCKS4Outbound) lookupIPv4(ctx context.Context, host string) (net.IP, error) {
	addrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if ipv4 := addr.IP.To4(); ipv4 != nil {
			return ipv4, nil
		}
	}
	return nil, fmt.Errorf("no IPv4 address for %s", host)
}
