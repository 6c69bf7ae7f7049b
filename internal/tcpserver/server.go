// Package tcpserver serves the line protocol over TCP: a greeting, an
// optional token handshake, then one result line per request line until
// the client quits.
package tcpserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/girs-server/girsd/internal/auth"
	"github.com/girs-server/girsd/internal/engine"
)

// TooManySessions is sent to connections over the session limit.
const TooManySessions = engine.ErrorPrefix + "too many sessions"

// SessionFactory builds the engine for a new session.
type SessionFactory func(sessionID string) (*engine.Engine, error)

// Options configures a Server.
type Options struct {
	Port         int
	AllowedCIDRs []string
	IdleTimeout  time.Duration
	MaxSessions  int
	// Verifier enables the "auth <token>" handshake when set.
	Verifier *auth.Verifier
}

// Server accepts line-protocol sessions.
type Server struct {
	opts       Options
	networks   []*net.IPNet
	newSession SessionFactory
	evalLock   sync.Locker

	ctx    context.Context
	cancel context.CancelFunc

	listener          net.Listener
	stopChan          chan struct{}
	activeConnections map[string]net.Conn
	connectionsMutex  sync.RWMutex
	wg                sync.WaitGroup
}

// NewServer creates a server. evalLock serializes evaluation across
// sessions sharing hardware; an empty CIDR list admits every client.
func NewServer(opts Options, newSession SessionFactory, evalLock sync.Locker) (*Server, error) {
	networks := make([]*net.IPNet, 0, len(opts.AllowedCIDRs))
	for _, cidr := range opts.AllowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %s: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	if evalLock == nil {
		evalLock = &sync.Mutex{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:              opts,
		networks:          networks,
		newSession:        newSession,
		evalLock:          evalLock,
		ctx:               ctx,
		cancel:            cancel,
		stopChan:          make(chan struct{}),
		activeConnections: make(map[string]net.Conn),
	}, nil
}

// ListenAndServe listens on the configured port and serves until Close.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %v", s.opts.Port, err)
	}
	log.Printf("Command server listening on port %d", s.opts.Port)
	return s.Serve(listener)
}

// Serve accepts connections on listener until Close.
func (s *Server) Serve(listener net.Listener) error {
	s.connectionsMutex.Lock()
	s.listener = listener
	s.connectionsMutex.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Failed to accept connection: %v", err)
			continue
		}

		if !s.isAllowedConnection(conn) {
			log.Printf("Rejected connection from %s (not in allowed CIDRs)", conn.RemoteAddr())
			conn.Close()
			continue
		}

		id := uuid.NewString()
		if !s.track(id, conn) {
			log.Printf("Rejected connection from %s (session limit %d)", conn.RemoteAddr(), s.opts.MaxSessions)
			fmt.Fprintf(conn, "%s\n", TooManySessions)
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(id)
			s.ServeConn(id, conn)
		}()
	}
}

// ServeConn runs one session on conn and closes it.
func (s *Server) ServeConn(id string, conn net.Conn) {
	defer conn.Close()
	log.Printf("Session %s opened from %s", id, conn.RemoteAddr())
	defer log.Printf("Session %s closed", id)

	eng, err := s.newSession(id)
	if err != nil {
		log.Printf("Session %s: %v", id, err)
		fmt.Fprintf(conn, "%s%v\n", engine.ErrorPrefix, err)
		return
	}

	w := bufio.NewWriter(conn)
	reader := bufio.NewScanner(conn)
	send := func(line string) bool {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return false
		}
		return w.Flush() == nil
	}
	next := func() (string, bool) {
		if s.opts.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))
		}
		if !reader.Scan() {
			if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
				log.Printf("Session %s: read: %v", id, err)
			}
			return "", false
		}
		return strings.TrimRight(reader.Text(), "\r"), true
	}

	if !send(eng.Version()) {
		return
	}

	if s.opts.Verifier != nil {
		line, ok := next()
		if !ok {
			return
		}
		if err := s.authenticate(line); err != nil {
			log.Printf("Session %s: %v", id, err)
			send(engine.ErrorPrefix + err.Error())
			return
		}
		if !send(engine.SuccessMarker) {
			return
		}
	}

	for {
		line, ok := next()
		if !ok {
			return
		}
		s.evalLock.Lock()
		result := eng.Eval(s.ctx, line)
		s.evalLock.Unlock()

		if !send(result) {
			return
		}
		if eng.State() == engine.QuitRequested {
			return
		}
	}
}

func (s *Server) authenticate(line string) error {
	tokens := engine.Tokenize(line)
	if len(tokens) != 2 || !strings.EqualFold(tokens[0], "auth") {
		return fmt.Errorf("%w: expected 'auth <token>'", auth.ErrUnauthorized)
	}
	_, err := s.opts.Verifier.Verify(tokens[1])
	return err
}

func (s *Server) track(id string, conn net.Conn) bool {
	s.connectionsMutex.Lock()
	defer s.connectionsMutex.Unlock()
	if s.opts.MaxSessions > 0 && len(s.activeConnections) >= s.opts.MaxSessions {
		return false
	}
	s.activeConnections[id] = conn
	return true
}

func (s *Server) untrack(id string) {
	s.connectionsMutex.Lock()
	defer s.connectionsMutex.Unlock()
	delete(s.activeConnections, id)
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.connectionsMutex.RLock()
	defer s.connectionsMutex.RUnlock()
	return len(s.activeConnections)
}

// isAllowedConnection checks the client address against the allowed CIDRs.
func (s *Server) isAllowedConnection(conn net.Conn) bool {
	if len(s.networks) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return false
	}
	clientIP := net.ParseIP(host)
	if clientIP == nil {
		return false
	}
	for _, network := range s.networks {
		if network.Contains(clientIP) {
			return true
		}
	}
	return false
}

// Close stops accepting, closes every session and waits for them.
func (s *Server) Close() error {
	select {
	case <-s.stopChan:
		return nil
	default:
		close(s.stopChan)
	}
	s.cancel()

	s.connectionsMutex.Lock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for _, conn := range s.activeConnections {
		conn.Close()
	}
	s.connectionsMutex.Unlock()

	s.wg.Wait()
	return err
}
