package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/danmuck/xrpc/httpwire"
)

func (b *BoundServer) acceptLoop(ln net.Listener) error {
	defer ln.Close()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("server: accept loop stopped: %w", err)
			}
			b.dispatch.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		go b.serveConn(conn)
	}
}

// serveConn drives the serial request/response cycle for one accepted
// connection until the peer disconnects or violates the framing.
// Responses go out in the order their requests were read.
func (b *BoundServer) serveConn(conn net.Conn) {
	defer conn.Close()

	logger := b.dispatch.log.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	logger.Info().Msg("connection accepted")

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	for {
		req, err := httpwire.ReadRequest(br, conn.RemoteAddr())
		if err != nil {
			if errors.Is(err, httpwire.ErrUnexpectedEOF) {
				logger.Debug().Msg("peer disconnected")
			} else {
				logger.Debug().Err(err).Msg("request rejected")
			}
			return
		}
		logger.Debug().
			Str("method", string(req.Method)).
			Str("path", req.Path).
			Int("body_length", req.BodyLength).
			Msg("request received")

		resp := b.dispatch.handleRequest("tcp", req)
		if err := resp.Send(bw, req.Method == httpwire.MethodHead); err != nil {
			logger.Debug().Err(err).Msg("response write failed")
			return
		}
		if err := bw.Flush(); err != nil {
			logger.Debug().Err(err).Msg("response flush failed")
			return
		}
	}
}
