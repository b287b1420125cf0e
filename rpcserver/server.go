// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rpcserver wires a net.Listener, a stream deframer, and an
// rpc.Dispatcher together into an accept-loop server, generalizing
// TcpServer/TcpRpcServer: each accepted connection gets its own task that
// reads until EOF, decodes frames, dispatches them, and frames replies back
// out, cooperatively yielding once reads are exhausted so other connections
// still get CPU time.
package rpcserver

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"code.hybscloud.com/rpcframe/cobs"
	"code.hybscloud.com/rpcframe/deframe"
	"code.hybscloud.com/rpcframe/rpc"
	"code.hybscloud.com/rpcframe/rtos"
	"code.hybscloud.com/rpcframe/slip"
)

// Framing selects which stream framing discipline a Server applies to every
// accepted connection.
type Framing uint8

const (
	FramingCOBS Framing = iota
	FramingSLIP
)

// Server accepts connections and serves RPC calls over them, generalizing
// TcpRpcServer built atop TcpServer's accept loop.
type Server struct {
	Listener   net.Listener
	Dispatcher *rpc.Dispatcher
	Framing    Framing
	// MTU bounds both the deframer's work buffer and the largest frame this
	// server will encode; defaults to 4096, matching the original's
	// PROTORPC_MSG_MAX_SIZE-adjacent TCP_BUFFER_SIZE.
	MTU int
	Log zerolog.Logger
}

func (s *Server) mtu() int {
	if s.MTU <= 0 {
		return 4096
	}
	return s.MTU
}

func (s *Server) newDeframer() deframe.Deframer {
	if s.Framing == FramingSLIP {
		return deframe.NewSLIP(s.mtu(), false, s.Log)
	}
	return deframe.NewCOBS(s.mtu(), false, s.Log)
}

func (s *Server) frame(dst, payload []byte) (int, error) {
	if s.Framing == FramingSLIP {
		return slip.Frame(dst, payload)
	}
	return cobs.Frame(dst, payload)
}

func (s *Server) maxFramedLen(n int) int {
	if s.Framing == FramingSLIP {
		return slip.MaxFramedLen(n)
	}
	return cobs.MaxEncodedLen(n) + 2
}

// Serve runs the accept loop until the listener's Accept returns an error
// (for example because the listener was closed), generalizing
// tcp_server_task's outer accept loop. It then returns ctx.Err() if ctx is
// already canceled, and the Accept error otherwise; canceling ctx alone does
// not interrupt a pending Accept. Each accepted connection is served on its
// own rtos.Thread.
func (s *Server) Serve(ctx context.Context) error {
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}

		rtos.Spawn(rtos.ThreadOptions{Name: "rpc-conn:" + conn.RemoteAddr().String()}, s.Log, func() {
			s.serveConn(ctx, conn)
		})
	}
}

// serveConn generalizes tcp_server_task's per-connection inner loop: read
// until the peer closes (read_done), draining any buffered frames and
// sending replies on every pass, yielding once no more reads are possible.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.Log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	def := s.newDeframer()

	readBuf := make([]byte, s.mtu())
	frameBuf := make([]byte, s.mtu())
	txBuf := make([]byte, s.maxFramedLen(s.mtu()))

	readDone := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var chunk []byte
		if !readDone {
			n, err := conn.Read(readBuf)
			switch {
			case errors.Is(err, io.EOF):
				readDone = true
			case err != nil:
				log.Warn().Err(err).Msg("rpcserver: closing connection after read error")
				return
			default:
				chunk = readBuf[:n]
			}
		} else {
			rtos.Sleep(time.Millisecond)
		}

		drained := s.drainFrames(&log, def, chunk, frameBuf, txBuf, conn)

		if readDone && !drained {
			return
		}
	}
}

// drainFrames pushes chunk (which may be nil, to resume draining staged
// bytes) through def, dispatching and replying to every complete frame it
// yields, and reports whether anything was produced.
func (s *Server) drainFrames(log *zerolog.Logger, def deframe.Deframer, chunk, frameBuf, txBuf []byte, conn net.Conn) bool {
	produced := false
	for {
		n, ready, err := def.Push(chunk, frameBuf)
		chunk = nil // only the first Push call in this drain feeds new bytes
		if err != nil {
			log.Warn().Err(err).Msg("rpcserver: dropping frame")
			continue
		}
		if !ready {
			return produced
		}
		produced = true

		reply, err := s.Dispatcher.Exec(frameBuf[:n])
		if err != nil {
			log.Error().Err(err).Msg("rpcserver: dispatcher error")
			continue
		}
		if len(reply) == 0 {
			continue
		}

		fn, err := s.frame(txBuf, reply)
		if err != nil {
			log.Error().Err(err).Msg("rpcserver: failed to frame reply")
			continue
		}
		if _, err := conn.Write(txBuf[:fn]); err != nil {
			log.Warn().Err(err).Msg("rpcserver: failed to write reply")
			return produced
		}
	}
}
