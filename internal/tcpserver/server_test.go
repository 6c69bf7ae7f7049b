package tcpserver

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/girs-server/girsd/internal/auth"
	"github.com/girs-server/girsd/internal/engine"
)

func newTestFactory() SessionFactory {
	return func(id string) (*engine.Engine, error) {
		return engine.NewBuilder("girsd test").Build()
	}
}

type client struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func newClient(t *testing.T, conn net.Conn) *client {
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *client) read() string {
	c.t.Helper()
	line, err := c.reader.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}

func (c *client) call(line string) string {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("write failed: %v", err)
	}
	return c.read()
}

func (c *client) expectClosed() {
	c.t.Helper()
	if _, err := c.reader.ReadString('\n'); err == nil {
		c.t.Error("Expected connection to be closed")
	}
}

func pipeSession(t *testing.T, s *Server) *client {
	serverSide, clientSide := net.Pipe()
	go s.ServeConn("test", serverSide)
	t.Cleanup(func() { clientSide.Close() })
	return newClient(t, clientSide)
}

func TestSession(t *testing.T) {
	s, err := NewServer(Options{}, newTestFactory(), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	c := pipeSession(t, s)

	if greeting := c.read(); greeting != "girsd test" {
		t.Errorf("Expected version greeting, got %q", greeting)
	}
	if got := c.call("version"); got != "girsd test" {
		t.Errorf("Expected version, got %q", got)
	}
	if got := c.call("   "); got != engine.SuccessMarker {
		t.Errorf("Expected %q, got %q", engine.SuccessMarker, got)
	}
	if got := c.call("bogus"); got != "ERROR: no such command: bogus" {
		t.Errorf("Expected error line, got %q", got)
	}
	if got := c.call("modules\r"); got != "base parameters" {
		t.Errorf("Expected CR to be stripped, got %q", got)
	}
	if got := c.call("quit"); got != engine.Goodbye {
		t.Errorf("Expected %q, got %q", engine.Goodbye, got)
	}
	c.expectClosed()
}

func TestFactoryError(t *testing.T) {
	s, _ := NewServer(Options{}, func(id string) (*engine.Engine, error) {
		return nil, errors.New("no engine")
	}, nil)
	c := pipeSession(t, s)

	if got := c.read(); got != "ERROR: no engine" {
		t.Errorf("Expected factory error, got %q", got)
	}
	c.expectClosed()
}

func TestAuthHandshake(t *testing.T) {
	v, _ := auth.NewVerifier("test-secret")
	token, _ := v.Sign("tester", time.Minute)
	s, _ := NewServer(Options{Verifier: v}, newTestFactory(), nil)

	c := pipeSession(t, s)
	c.read()
	if got := c.call("auth " + token); got != engine.SuccessMarker {
		t.Fatalf("Expected handshake to succeed, got %q", got)
	}
	if got := c.call("version"); got != "girsd test" {
		t.Errorf("Expected version after handshake, got %q", got)
	}

	tests := []struct {
		name string
		line string
	}{
		{"command before auth", "version"},
		{"bad token", "auth abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pipeSession(t, s)
			c.read()
			if got := c.call(tt.line); !strings.HasPrefix(got, "ERROR: unauthorized") {
				t.Errorf("Expected unauthorized, got %q", got)
			}
			c.expectClosed()
		})
	}
}

func TestListenerLifecycle(t *testing.T) {
	s, _ := NewServer(Options{MaxSessions: 1, AllowedCIDRs: []string{"127.0.0.0/8"}}, newTestFactory(), nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(listener) }()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	first := newClient(t, conn)
	if greeting := first.read(); greeting != "girsd test" {
		t.Errorf("Expected greeting, got %q", greeting)
	}

	conn2, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	second := newClient(t, conn2)
	if got := second.read(); got != TooManySessions {
		t.Errorf("Expected %q, got %q", TooManySessions, got)
	}
	second.expectClosed()

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	first.expectClosed()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected Serve to return nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Serve did not return after Close")
	}
	if s.Sessions() != 0 {
		t.Errorf("Expected no sessions after Close, got %d", s.Sessions())
	}
}

func TestIdleTimeout(t *testing.T) {
	s, _ := NewServer(Options{IdleTimeout: 50 * time.Millisecond}, newTestFactory(), nil)
	c := pipeSession(t, s)
	c.read()
	c.expectClosed()
}

type addrConn struct {
	net.Conn
	remote string
}

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

func (c *addrConn) RemoteAddr() net.Addr { return fakeAddr(c.remote) }

func TestIsAllowedConnection(t *testing.T) {
	s, err := NewServer(Options{AllowedCIDRs: []string{"127.0.0.0/8", "192.168.10.0/24"}}, newTestFactory(), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	tests := []struct {
		name        string
		remoteAddr  string
		expectAllow bool
	}{
		{"localhost IPv4", "127.0.0.1:12345", true},
		{"localhost IPv6", "[::1]:12345", false},
		{"home network", "192.168.10.7:12345", true},
		{"outside network", "10.1.1.1:12345", false},
		{"invalid address", "invalid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := s.isAllowedConnection(&addrConn{remote: tt.remoteAddr})
			if allowed != tt.expectAllow {
				t.Errorf("Expected allowed=%v for %s, got %v", tt.expectAllow, tt.remoteAddr, allowed)
			}
		})
	}

	open, _ := NewServer(Options{}, newTestFactory(), nil)
	if !open.isAllowedConnection(&addrConn{remote: "10.1.1.1:1"}) {
		t.Error("Expected empty CIDR list to admit every client")
	}
	if _, err := NewServer(Options{AllowedCIDRs: []string{"nonsense"}}, newTestFactory(), nil); err == nil {
		t.Error("Expected invalid CIDR to be rejected")
	}
}
