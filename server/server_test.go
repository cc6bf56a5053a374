package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"lfkv/control"
	"lfkv/hazard"
	"lfkv/kvtable"
	"lfkv/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		Table:       kvtable.NewTable(16),
		Hazard:      hazard.NewRegistry(8),
		Collector:   metrics.NewCollector(),
		RetireBatch: 8,
	}
}

// dialLoop wires handleConn against one end of an in-process pipe and lets
// the test drive it like a real client on the other end.
func dialLoop(t *testing.T, s *Server) (client net.Conn, done chan struct{}) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	done = make(chan struct{})
	control.Inflight.Add(1)
	go func() {
		s.handleConn(serverConn)
		close(done)
	}()
	return clientConn, done
}

func TestSetGetDelRoundTripOverConnection(t *testing.T) {
	s := newTestServer(t)
	client, done := dialLoop(t, s)
	reader := bufio.NewReader(client)

	client.Write([]byte("SET alpha 1\n"))
	line, _ := reader.ReadString('\n')
	if line != "OK\n" {
		t.Fatalf("SET reply = %q, want OK", line)
	}

	client.Write([]byte("GET alpha\n"))
	line, _ = reader.ReadString('\n')
	if line != "VALUE 1\n" {
		t.Fatalf("GET reply = %q, want VALUE 1", line)
	}

	client.Write([]byte("DEL alpha\n"))
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Fatalf("DEL reply = %q, want OK", line)
	}

	client.Write([]byte("GET alpha\n"))
	line, _ = reader.ReadString('\n')
	if line != "NONE\n" {
		t.Fatalf("GET after DEL reply = %q, want NONE", line)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleConn did not exit after client close")
	}
}

func TestMalformedLineReturnsErr(t *testing.T) {
	s := newTestServer(t)
	client, _ := dialLoop(t, s)
	defer client.Close()
	reader := bufio.NewReader(client)

	client.Write([]byte("NOPE\n"))
	line, _ := reader.ReadString('\n')
	if line[:4] != "ERR " {
		t.Fatalf("reply = %q, want ERR prefix", line)
	}
}

func TestTableFullSurfacesErrAndKeepsConnectionOpen(t *testing.T) {
	s := newTestServer(t)
	s.Table = kvtable.NewTable(1)
	client, _ := dialLoop(t, s)
	defer client.Close()
	reader := bufio.NewReader(client)

	client.Write([]byte("SET a 1\n"))
	if line, _ := reader.ReadString('\n'); line != "OK\n" {
		t.Fatalf("first SET reply = %q, want OK", line)
	}

	client.Write([]byte("SET b 2\n"))
	line, _ := reader.ReadString('\n')
	if line != "ERR kvtable: table full\n" {
		t.Fatalf("second SET reply = %q, want table-full error", line)
	}

	// Connection must still be usable after a table-full error.
	client.Write([]byte("GET a\n"))
	line, _ = reader.ReadString('\n')
	if line != "VALUE 1\n" {
		t.Fatalf("GET a after table-full = %q, want VALUE 1", line)
	}
}
