/*
Package server accepts TCP connections and runs the decode-dispatch-
encode loop for each one. One goroutine per connection; a per-
connection context is canceled on disconnect so blocking commands
(BLPOP/BRPOP) unblock when the client goes away.
*/
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/dispatch"
	"github.com/kvforge/respkv/internal/logging"
	"github.com/kvforge/respkv/internal/proto"
	"github.com/kvforge/respkv/internal/store"
)

// Server tracks the set of live connections. Listeners are passed to
// Serve and stay owned by the caller.
type Server struct {
	Store   *store.StateStore
	Scripts dispatch.Scripter
	Log     *logging.Logger

	wg          sync.WaitGroup
	connCount   int64
	mu          sync.Mutex
	connections map[net.Conn]context.CancelFunc
}

// New returns a Server ready to Serve on any number of listeners.
func New(st *store.StateStore, scripts dispatch.Scripter, log *logging.Logger) *Server {
	return &Server{
		Store:       st,
		Scripts:     scripts,
		Log:         log,
		connections: make(map[net.Conn]context.CancelFunc),
	}
}

// Serve accepts connections on ln until it is closed, handling each on
// its own goroutine. It returns once ln.Accept starts failing, which
// happens when the caller closes ln; Shutdown does not close it.
func (s *Server) Serve(ln net.Listener) {
	s.wg.Add(1)
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.Log.Warn("server: listener on %s closed: %v", ln.Addr(), err)
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown closes every tracked connection, waking any blocked command
// via its per-connection context, then waits for every connection
// goroutine and listener loop to finish. Every listener given to Serve
// must already be closed, or the wait does not return.
func (s *Server) Shutdown() {
	s.mu.Lock()
	for conn, cancel := range s.connections {
		cancel()
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.connections[conn] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.connections, conn)
		s.mu.Unlock()
	}()

	id := atomic.AddInt64(&s.connCount, 1)
	s.Log.Info("server: connection #%d accepted from %s", id, conn.RemoteAddr())
	defer s.Log.Info("server: connection #%d closed", id)

	dbCtx := &dispatch.Context{
		Ctx:     ctx,
		Store:   s.Store,
		Scripts: s.Scripts,
	}
	dbCtx.DB, _ = s.Store.DB(0)

	dec := proto.NewDecoder()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	var pending []byte
	readBuf := make([]byte, 4096)

	for {
		cmd, ok, err := nextCommand(reader, dec, &pending, readBuf)
		if err != nil {
			s.Log.Warn("server: connection #%d framing error: %v", id, err)
			return
		}
		if !ok {
			return
		}

		reply := s.execute(dbCtx, cmd, id)
		writer.Write(proto.Encode(nil, store.ToProto(reply)))
		if err := writer.Flush(); err != nil {
			s.Log.Warn("server: connection #%d write error: %v", id, err)
			return
		}
	}
}

// execute dispatches cmd, converting a handler panic into an internal-
// error reply rather than taking down the connection or poisoning any
// shared lock (every store lock is released via defer before a panic
// could unwind past it).
func (s *Server) execute(ctx *dispatch.Context, cmd command.Command, connID int64) (rv store.ReturnValue) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error("server: connection #%d panic in %s: %v", connID, cmd.Name, r)
			rv = store.ErrorRes(fmt.Sprintf("ERR internal error processing %s", cmd.Name))
		}
	}()
	return dispatch.Dispatch(ctx, cmd)
}

// nextCommand reads and parses exactly one command from reader,
// growing pending as needed. ok is false on a clean EOF with no
// partial frame buffered.
func nextCommand(reader *bufio.Reader, dec *proto.Decoder, pending *[]byte, readBuf []byte) (command.Command, bool, error) {
	for {
		n, v, err := dec.Decode(*pending)
		switch err {
		case nil:
			*pending = (*pending)[n:]
			cmd, perr := command.Parse(v)
			if perr != nil {
				return command.Command{}, false, perr
			}
			return cmd, true, nil
		case proto.ErrIncomplete:
			// fall through to read more
		default:
			return command.Command{}, false, err
		}

		n, readErr := reader.Read(readBuf)
		if n > 0 {
			*pending = append(*pending, readBuf[:n]...)
			continue
		}
		if readErr != nil {
			return command.Command{}, false, nil
		}
	}
}
