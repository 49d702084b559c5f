// Package socks4test реализует серверную сторону SOCKS4 handshake
// для тестовых прокси. В рабочем коде не используется.
package socks4test

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"example.com/me/upstreamclient/internal/protocol/socks4"
)

// maxUserIDLen ограничение на длину USERID при разборе запроса
const maxUserIDLen = 255

// Request разобранный SOCKS4 CONNECT request
type Request struct {
	Address string // "ip:port"
	UserID  string
}

// ParseRequest парсит SOCKS4 request
// Читает из reader: [VN, CD, DSTPORT, DSTIP, USERID, NULL]
func ParseRequest(reader io.Reader) (*Request, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read request header: %w", err)
	}

	if header[0] != socks4.Version {
		return nil, fmt.Errorf("unsupported SOCKS version: %d", header[0])
	}
	if header[1] != socks4.CommandConnect {
		return nil, fmt.Errorf("unsupported command: %d", header[1])
	}

	port := binary.BigEndian.Uint16(header[2:4])
	ip := net.IP(header[4:8])

	// USERID заканчивается NUL байтом; читаем без буферизации
	userID := make([]byte, 0, 16)
	b := make([]byte, 1)
	for {
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("failed to read user id: %w", err)
		}
		if b[0] == 0x00 {
			break
		}
		if len(userID) == maxUserIDLen {
			return nil, fmt.Errorf("user id too long")
		}
		userID = append(userID, b[0])
	}

	return &Request{
		Address: fmt.Sprintf("%s:%d", ip.String(), port),
		UserID:  string(userID),
	}, nil
}

// BuildResponse строит SOCKS4 response
// Формат: [VN=0x00, CD, DSTPORT(2), DSTIP(4)]
// Для простоты используем 0.0.0.0:0
func BuildResponse(reply byte) []byte {
	return []byte{0x00, reply, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
}
