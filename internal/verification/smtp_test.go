// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package verification

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/foottraffic/internal/config"
)

// fakeSMTP accepts one session and returns the DATA payload on the channel.
func fakeSMTP(t *testing.T, extensions ...string) (host string, port int, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 fake ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				for _, ext := range extensions {
					write("250-" + ext)
				}
				write("250 fake")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				write("250 OK")
			case cmd == "DATA":
				write("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				out <- body.String()
				write("250 queued")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("502 unsupported")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, out
}

func TestSMTPSenderDelivers(t *testing.T) {
	t.Parallel()

	host, port, data := fakeSMTP(t)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, From: "noreply@foottraffic.local"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sender.Deliver(ctx, BuildMessage("ana@example.com", "246810", "FootTraffic")); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	select {
	case body := <-data:
		for _, want := range []string{
			"From: FootTraffic <noreply@foottraffic.local>",
			"To: ana@example.com",
			"Your verification code is: 246810",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("message missing %q:\n%s", want, body)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received DATA")
	}
}

func TestSMTPSenderRequiresStartTLS(t *testing.T) {
	t.Parallel()

	host, port, _ := fakeSMTP(t)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, From: "a@b.co", StartTLS: true})

	err := sender.Deliver(context.Background(), BuildMessage("ana@example.com", "246810", "FootTraffic"))
	if !errors.Is(err, ErrStartTLSUnsupported) {
		t.Errorf("Deliver() error = %v, want ErrStartTLSUnsupported", err)
	}
}

func TestSMTPSenderConnectError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: port, From: "a@b.co"})
	err = sender.Deliver(context.Background(), Message{To: "x@y.z"})
	if err == nil || !strings.Contains(err.Error(), "failed to connect to SMTP server") {
		t.Errorf("Deliver() error = %v", err)
	}
}
