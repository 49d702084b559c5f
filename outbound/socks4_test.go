package outbound

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"example.com/me/upstreamclient/internal/protocol/socks4"
	"example.com/me/upstreamclient/internal/protocol/socks4/socks4test"
)

// startSOCKS4Server запускает тестовый SOCKS4 прокси, который отвечает reply
// и затем работает как эхо-сервер. Запросы отправляются в requests.
func startSOCKS4Server(t *testing.T, reply byte) (string, <-chan *socks4test.Request) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	requests := make(chan *socks4test.Request, 16)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				req, err := socks4test.ParseRequest(c)
				if err != nil {
					return
				}
				requests <- req

				if _, err := c.Write(socks4test.BuildResponse(reply)); err != nil {
					return
				}
				if reply != socks4.ReplyGranted {
					return
				}

				io.Copy(c, c)
			}(conn)
		}
	}()

	return listener.Addr().String(), requests
}

func TestSOCKS4Outbound_Dial(t *testing.T) {
	proxyAddr, requests := startSOCKS4Server(t, socks4.ReplyGranted)
	outbound := NewSOCKS4Outbound(proxyAddr, "bob", nil)

	t.Run("connect via SOCKS4 proxy", func(t *testing.T) {
		conn, err := outbound.Dial("tcp", "10.1.2.3:8080")
		if err != nil {
			t.Fatalf("Failed to dial via SOCKS4: %v", err)
		}
		defer conn.Close()

		req := <-requests
		if req.Address != "10.1.2.3:8080" {
			t.Errorf("Invalid target address: expected 10.1.2.3:8080, got %s", req.Address)
		}
		if req.UserID != "bob" {
			t.Errorf("Invalid user id: expected bob, got %s", req.UserID)
		}

		if _, err := conn.Write([]byte("ping")); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			t.Fatalf("Failed to read echo: %v", err)
		}
		if string(buf) != "ping" {
			t.Errorf("Invalid echo: %q", buf)
		}
	})

	t.Run("hostname resolved locally", func(t *testing.T) {
		conn, err := outbound.Dial("tcp", "localhost:80")
		if err != nil {
			t.Fatalf("Failed to dial via SOCKS4: %v", err)
		}
		defer conn.Close()

		req := <-requests
		if req.Address != "127.0.0.1:80" {
			t.Errorf("Invalid target address: expected 127.0.0.1:80, got %s", req.Address)
		}
	})

	t.Run("unsupported network", func(t *testing.T) {
		_, err := outbound.Dial("udp", "10.1.2.3:53")
		if err == nil {
			t.Error("Expected error for unsupported network")
		}
	})

	t.Run("IPv6 target", func(t *testing.T) {
		_, err := outbound.Dial("tcp", "[::1]:80")
		if err == nil {
			t.Error("Expected error for IPv6 target")
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		_, err := outbound.Dial("tcp", "invalid")
		if err == nil {
			t.Error("Expected error for invalid address")
		}
	})
}

func TestSOCKS4Outbound_Rejected(t *testing.T) {
	proxyAddr, _ := startSOCKS4Server(t, socks4.ReplyRejected)
	outbound := NewSOCKS4Outbound(proxyAddr, "", nil)

	conn, err := outbound.Dial("tcp", "10.1.2.3:80")
	if err == nil {
		conn.Close()
		t.Fatal("Expected error for rejected request")
	}
}

func TestSOCKS4Outbound_ProxyUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	outbound := NewSOCKS4Outbound(addr, "", NewDirectOutboundWithTimeout(time.Second))
	if _, err := outbound.Dial("tcp", "10.1.2.3:80"); err == nil {
		t.Error("Expected error for unreachable proxy")
	}
}

func TestSOCKS4Outbound_ContextDeadline(t *testing.T) {
	// прокси принимает соединение, но никогда не отвечает
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	outbound := NewSOCKS4Outbound(listener.Addr().String(), "", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := outbound.DialContext(ctx, "tcp", "10.1.2.3:80"); err == nil {
		t.Fatal("Expected error when proxy does not answer")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Deadline was not applied: took %v", elapsed)
	}
}

func TestNewSOCKS4Outbound(t *testing.T) {
	outbound := NewSOCKS4Outbound("127.0.0.1:1080", "id", nil)

	if outbound.proxyAddress != "127.0.0.1:1080" {
		t.Errorf("Invalid proxy address: expected 127.0.0.1:1080, got %s", outbound.proxyAddress)
	}

	if outbound.forward == nil {
		t.Error("Forward dialer is not initialized")
	}

	var _ ContextOutbound = outbound
}

func TestSOCKS4Outbound_ContextCancel(t *testing.T) {
	// прокси принимает соединение и молчит; у ctx нет дедлайна
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()
	t.Cleanup(func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	})

	outbound := NewSOCKS4Outbound(listener.Addr().String(), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	errc := make(chan error, 1)
	go func() {
		conn, err := outbound.DialContext(ctx, "tcp", "1.2.3.4:80")
		if conn != nil {
			conn.Close()
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("DialContext was not interrupted by context cancellation")
	}
}
