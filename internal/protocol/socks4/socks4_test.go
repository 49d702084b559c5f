package socks4

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
)

func TestBuildRequest(t *testing.T) {
	t.Run("IPv4 with user id", func(t *testing.T) {
		request, err := BuildRequest(net.ParseIP("192.168.1.1"), 80, "bob")
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}

		if len(request) != 8+3+1 {
			t.Errorf("Invalid request length: expected 12, got %d", len(request))
		}
		if request[0] != 0x04 || request[1] != 0x01 {
			t.Error("Invalid request format")
		}
		if port := binary.BigEndian.Uint16(request[2:4]); port != 80 {
			t.Errorf("Invalid port: expected 80, got %d", port)
		}
		if !net.IP(request[4:8]).Equal(net.ParseIP("192.168.1.1")) {
			t.Errorf("Invalid IP: %v", net.IP(request[4:8]))
		}
		if string(request[8:11]) != "bob" || request[11] != 0x00 {
			t.Errorf("Invalid user id section: %v", request[8:])
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		request, err := BuildRequest(net.ParseIP("10.0.0.1"), 443, "")
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}
		if len(request) != 9 || request[8] != 0x00 {
			t.Errorf("Invalid request: %v", request)
		}
	})

	t.Run("IPv6 rejected", func(t *testing.T) {
		if _, err := BuildRequest(net.ParseIP("::1"), 80, ""); err == nil {
			t.Error("Expected error for IPv6 target")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		if _, err := BuildRequest(net.ParseIP("10.0.0.1"), 0, ""); err == nil {
			t.Error("Expected error for port 0")
		}
	})

	t.Run("NUL in user id", func(t *testing.T) {
		if _, err := BuildRequest(net.ParseIP("10.0.0.1"), 80, "a\x00b"); err == nil {
			t.Error("Expected error for NUL in user id")
		}
	})
}

// response ответ сервера [VN=0x00, CD, 0.0.0.0:0]
func response(reply byte) []byte {
	return []byte{0x00, reply, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
}

func TestReadResponse(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		addr, err := ReadResponse(bytes.NewReader(response(ReplyGranted)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if addr != "0.0.0.0:0" {
			t.Errorf("Invalid bound address: %s", addr)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := ReadResponse(bytes.NewReader(response(ReplyRejected)))
		if err == nil {
			t.Fatal("Expected error for rejected request")
		}
	})

	t.Run("short response", func(t *testing.T) {
		if _, err := ReadResponse(bytes.NewReader([]byte{0x00, ReplyGranted})); err == nil {
			t.Error("Expected error for short response")
		}
	})

	t.Run("invalid version", func(t *testing.T) {
		resp := response(ReplyGranted)
		resp[0] = 0x04
		if _, err := ReadResponse(bytes.NewReader(resp)); err == nil {
			t.Error("Expected error for invalid version")
		}
	})
}

func TestReplyText(t *testing.T) {
	if ReplyText(ReplyIdentdMismatch) != "identd user id mismatch" {
		t.Errorf("Unexpected text: %s", ReplyText(ReplyIdentdMismatch))
	}
	if ReplyText(0x01) != "unknown reply code 1" {
		t.Errorf("Unexpected text: %s", ReplyText(0x01))
	}
}
