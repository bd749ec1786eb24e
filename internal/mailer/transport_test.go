package mailer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massgo/mailer-backend/internal/model"
)

var testCred = model.SenderCredential{Email: "sender@gmail.com", AppPassword: "app-pass"}

func TestClassify_AuthenticationFailed(t *testing.T) {
	tr := &SMTP{Host: "smtp.gmail.com", Port: 587}

	out := tr.classify(testCred, &authError{err: errors.New("535 5.7.8 Username and Password not accepted")})

	assert.False(t, out.OK)
	assert.Equal(t, model.FailureAuth, out.Kind)
	assert.Contains(t, out.Message, "Authentication failed for sender@gmail.com")
	assert.Contains(t, out.Message, "Check email/password or app password in Settings.")
}

func TestClassify_ServerDisconnected(t *testing.T) {
	tr := &SMTP{Host: "smtp.gmail.com", Port: 587}

	for _, err := range []error{
		errors.Wrap(io.EOF, "failed to set sender"),
		errors.New("write tcp 127.0.0.1:587: connection reset by peer"),
		errors.New("read tcp: broken pipe"),
	} {
		out := tr.classify(testCred, err)
		assert.Equal(t, model.FailureDisconnected, out.Kind, "error: %v", err)
		assert.Contains(t, out.Message, "SMTP server disconnected for sender@gmail.com")
		assert.Contains(t, out.Message, "Try again later.")
	}
}

func TestClassify_Other(t *testing.T) {
	tr := &SMTP{Host: "smtp.gmail.com", Port: 587}

	out := tr.classify(testCred, errors.New("550 mailbox unavailable"))

	assert.Equal(t, model.FailureOther, out.Kind)
	assert.Equal(t, "550 mailbox unavailable", out.Message)
}

// startScriptedServer runs a one-connection SMTP conversation that refuses
// the TLS upgrade, which is as far as a plaintext test server can take a
// client that always demands STARTTLS.
func startScriptedServer(t *testing.T) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)
		fmt.Fprintf(conn, "220 fake ESMTP ready\r\n")
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				fmt.Fprintf(conn, "250-fake greets you\r\n250 AUTH PLAIN LOGIN\r\n")
			case strings.HasPrefix(cmd, "STARTTLS"):
				fmt.Fprintf(conn, "502 5.5.1 STARTTLS not implemented\r\n")
			case strings.HasPrefix(cmd, "QUIT"):
				fmt.Fprintf(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprintf(conn, "500 unrecognized command\r\n")
			}
		}
	}()

	return hostPort(t, ln.Addr().String())
}

func hostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestProbe_StartTLSRefused(t *testing.T) {
	host, port := startScriptedServer(t)
	tr := &SMTP{Host: host, Port: port}

	out := tr.Probe(context.Background(), testCred)

	require.False(t, out.OK)
	assert.Equal(t, model.FailureOther, out.Kind)
	assert.Contains(t, out.Message, "502")
}

func TestSend_StartTLSRefused(t *testing.T) {
	host, port := startScriptedServer(t)
	tr := &SMTP{Host: host, Port: port}

	out := tr.Send(context.Background(), testCred, "Ops", "alice@example.com", "s", "<p>b</p>", nil)

	require.False(t, out.OK)
	assert.Equal(t, model.FailureOther, out.Kind)
}

func TestProbe_ImmediateDisconnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	host, port := hostPort(t, ln.Addr().String())
	tr := &SMTP{Host: host, Port: port}

	out := tr.Probe(context.Background(), testCred)

	require.False(t, out.OK)
	assert.Equal(t, model.FailureDisconnected, out.Kind)
	assert.Contains(t, out.Message, "Try again later.")
}

func TestProbe_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &SMTP{Host: "smtp.gmail.com", Port: 587}
	out := tr.Probe(ctx, testCred)

	require.False(t, out.OK)
	assert.Contains(t, out.Message, "context canceled")
}
