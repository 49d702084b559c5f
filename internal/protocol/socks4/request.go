package socks4

import (
	"encoding/binary"
	"fmt"
	"net"
)

const (
	// Version версия протокола в запросе
	Version = 0x04
	// CommandConnect CD = CONNECT
	CommandConnect = 0x01
)

// BuildRequest строит SOCKS4 CONNECT request
// Формат: [VN, CD, DSTPORT(2), DSTIP(4), USERID..., NULL]
// VN = 0x04 (SOCKS4)
// CD = 0x01 (CONNECT)
func BuildRequest(ip net.IP, port int, userID string) ([]byte, error) {
	ipv4 := ip.To4()
	if ipv4 == nil {
		return nil, fmt.Errorf("SOCKS4 supports only IPv4 targets, got %s", ip)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("port out of range: %d", port)
	}
	for i := 0; i < len(userID); i++ {
		if userID[i] == 0x00 {
			return nil, fmt.Errorf("user id must not contain NUL bytes")
		}
	}

	request := make([]byte, 0, 8+len(userID)+1)
	request = append(request, Version, CommandConnect)

	portBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(portBytes, uint16(port))
	request = append(request, portBytes...)
	request = append(request, ipv4...)
	request = append(request, []byte(userID)...)
	request = append(request, 0x00)

	return request, nil
}
