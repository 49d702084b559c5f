package socks4

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// ResponseSize длина ответа SOCKS4 сервера
const ResponseSize = 8

// Reply codes
const (
	ReplyGranted           = 0x5A
	ReplyRejected          = 0x5B
	ReplyIdentdUnreachable = 0x5C
	ReplyIdentdMismatch    = 0x5D
)

// ReadResponse читает ответ SOCKS4 сервера и возвращает ошибку, если запрос отклонен.
// Возвращает адрес, который сообщил сервер.
func ReadResponse(reader io.Reader) (string, error) {
	buf := make([]byte, ResponseSize)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("failed to read SOCKS4 response: %w", err)
	}

	if buf[0] != 0x00 {
		return "", fmt.Errorf("invalid SOCKS4 response version: %d", buf[0])
	}

	if buf[1] != ReplyGranted {
		return "", fmt.Errorf("SOCKS4 request rejected: %s", ReplyText(buf[1]))
	}

	port := binary.BigEndian.Uint16(buf[2:4])
	ip := net.IP(buf[4:8])
	return fmt.Sprintf("%s:%d", ip.String(), port), nil
}

// ReplyText возвращает описание кода ответа
func ReplyText(reply byte) string {
	switch reply {
	case ReplyGranted:
		return "request granted"
	case ReplyRejected:
		return "request rejected or failed"
	case ReplyIdentdUnreachable:
		return "identd unreachable"
	case ReplyIdentdMismatch:
		return "identd user id mismatch"
	default:
		return fmt.Sprintf("unknown reply code %d", reply)
	}
}
