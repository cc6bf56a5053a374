// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: server.go — TCP acceptor and per-connection worker loop
//
// Purpose:
//   - Accepts line-protocol TCP connections and dispatches parsed GET/SET/DEL
//     commands into kvtable, one hazard.Handle registered per connection for
//     its whole lifetime (spec §9: "a registered thread keeps its index for
//     the life of the connection, not per-call").
//   - Grounded on original_source/src/server.cpp's accept/thread/read loop:
//     same per-connection goroutine-per-thread model, same buffered line
//     framing, same release-on-exit discipline — generalized from a detached
//     std::thread into a goroutine tracked by control.Inflight.
//
// ─────────────────────────────────────────────────────────────────────────────

package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"runtime"
	"time"

	"lfkv/affinity"
	"lfkv/constants"
	"lfkv/control"
	"lfkv/debug"
	"lfkv/hazard"
	"lfkv/kvtable"
	"lfkv/metrics"
	"lfkv/protocol"
)

// Server is the data-plane TCP listener.
type Server struct {
	Table       *kvtable.Table
	Hazard      *hazard.Registry
	Collector   *metrics.Collector
	RetireBatch int
	PinWorkers  bool

	listener net.Listener
}

// ListenAndServe binds addr and accepts connections until control.Stopped
// reports true, at which point it stops accepting and returns nil. Each
// accepted connection is handled on its own goroutine, tracked by
// control.Inflight so shutdown can drain them.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	debug.DropMessage("server", "listening on "+addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if control.Stopped() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			debug.DropError("server.accept", err)
			continue
		}
		if control.Stopped() {
			conn.Close()
			continue
		}

		control.Inflight.Add(1)
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections; in-flight connections are left to
// drain, tracked by control.Inflight.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConn owns one client connection end to end: registers a hazard
// handle, pins the OS thread if configured, parses lines, dispatches into
// the table, and guarantees release_index fires exactly once on every exit
// path — including a recovered panic — per spec §4.1/§9.
func (s *Server) handleConn(conn net.Conn) {
	defer control.Inflight.Done()
	defer conn.Close()

	if s.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	h, err := s.Hazard.Acquire(s.RetireBatch)
	if err != nil {
		debug.DropError("server.acquire", err)
		conn.Write([]byte("ERR no hazard slot\n"))
		return
	}
	defer h.Release()

	if s.PinWorkers {
		affinity.Pin(h.Index() % runtime.NumCPU())
	}

	defer func() {
		if r := recover(); r != nil {
			debug.DropMessage("server.panic", "recovered in connection handler")
		}
	}()

	reader := bufio.NewReaderSize(conn, constants.MaxLineSize)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			s.dispatchLine(conn, h, trimLine(line))
		}
		if err != nil {
			if err != io.EOF {
				debug.DropError("server.read", err)
			}
			return
		}
	}
}

func trimLine(line string) string {
	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	return line[:n]
}

// dispatchLine parses and executes one already-framed line, writing a
// reply in the server's OK/VALUE/ERR reply convention. A kvtable.ErrTableFull
// is always surfaced to the client and the connection stays open (spec §9
// REDESIGN FLAG: table-full is never silent).
func (s *Server) dispatchLine(conn net.Conn, h *hazard.Handle, line string) {
	if line == "" {
		return
	}
	cmd, err := protocol.Parse(line)
	if err != nil {
		conn.Write([]byte("ERR " + err.Error() + "\n"))
		return
	}

	if s.Collector != nil {
		s.Collector.IncActive()
		start := time.Now()
		defer func() {
			s.Collector.DecActive()
			s.Collector.ObserveLatency(time.Since(start))
		}()
	}

	switch cmd.Kind {
	case protocol.Get:
		v, ok := s.Table.Get(h, cmd.Key)
		if !ok {
			conn.Write([]byte("NONE\n"))
			return
		}
		conn.Write([]byte("VALUE " + v + "\n"))

	case protocol.Set:
		if err := s.Table.Set(h, cmd.Key, cmd.Value); err != nil {
			conn.Write([]byte("ERR " + err.Error() + "\n"))
			return
		}
		conn.Write([]byte("OK\n"))

	case protocol.Del:
		s.Table.Del(h, cmd.Key)
		conn.Write([]byte("OK\n"))
	}
}
