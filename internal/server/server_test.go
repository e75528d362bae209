package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/kvforge/respkv/internal/logging"
	"github.com/kvforge/respkv/internal/proto"
	"github.com/kvforge/respkv/internal/store"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()
	st := store.NewStateStore(4)
	s := New(st, nil, logging.New(logging.Options{}))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)
	t.Cleanup(func() {
		ln.Close()
		s.Shutdown()
	})
	return s, ln
}

func sendCommand(t *testing.T, conn net.Conn, args ...string) proto.Value {
	t.Helper()
	elems := make([]proto.Value, len(args))
	for i, a := range args {
		elems[i] = proto.Bulk([]byte(a))
	}
	_, err := conn.Write(proto.EncodeBytes(proto.Arr(elems)))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	dec := proto.NewDecoder()
	var buf []byte
	readBuf := make([]byte, 4096)
	for {
		_, v, err := dec.Decode(buf)
		if err == nil {
			return v
		}
		require.ErrorIs(t, err, proto.ErrIncomplete)
		n, rerr := r.Read(readBuf)
		buf = append(buf, readBuf[:n]...)
		require.NoError(t, rerr)
	}
}

func TestServerRoundTripsPingAndSet(t *testing.T) {
	_, ln := startTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	reply := sendCommand(t, conn, "PING")
	require.Equal(t, proto.TypeBulkString, reply.Type)
	require.Equal(t, "PONG", string(reply.Str))

	reply = sendCommand(t, conn, "SET", "k", "v")
	require.Equal(t, proto.TypeSimpleString, reply.Type)
	require.Equal(t, "OK", string(reply.Str))

	reply = sendCommand(t, conn, "GET", "k")
	require.Equal(t, proto.TypeBulkString, reply.Type)
	require.Equal(t, "v", string(reply.Str))
}

func TestServerUnknownCommandIsError(t *testing.T) {
	_, ln := startTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	reply := sendCommand(t, conn, "NOSUCHCOMMAND")
	require.Equal(t, proto.TypeError, reply.Type)
}

func TestServerClosingListenerUnblocksBLPOP(t *testing.T) {
	s, ln := startTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		sendCommand(t, conn, "BLPOP", "missing", "0")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	ln.Close()
	s.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BLPOP did not unblock after shutdown")
	}
}
