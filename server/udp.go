package server

import (
	"bufio"
	"bytes"
	"fmt"
	"net"

	"github.com/danmuck/xrpc/httpwire"
)

// datagramSize caps both the request a datagram may carry and the
// response sent back.
const datagramSize = 4096

// receiveLoop answers datagrams strictly one at a time; a stalled
// handler blocks everything behind it.
func (b *BoundServer) receiveLoop(pc net.PacketConn) error {
	defer pc.Close()
	buf := make([]byte, datagramSize)
	for {
		n, origin, err := pc.ReadFrom(buf)
		if err != nil {
			return fmt.Errorf("server: receive loop stopped: %w", err)
		}
		b.handleDatagram(pc, origin, buf[:n])
	}
}

// handleDatagram parses payload as one framed request and sends the
// framed response back to its origin. An unparsable datagram is dropped
// without a reply, as is a response that does not fit one datagram.
func (b *BoundServer) handleDatagram(pc net.PacketConn, origin net.Addr, payload []byte) {
	req, err := httpwire.ReadRequest(bufio.NewReader(bytes.NewReader(payload)), origin)
	if err != nil {
		b.dispatch.log.Debug().
			Str("remote", origin.String()).
			Err(err).
			Msg("datagram rejected")
		return
	}

	resp := b.dispatch.handleRequest("udp", req)

	var out bytes.Buffer
	if err := resp.Send(&out, req.Method == httpwire.MethodHead); err != nil {
		b.dispatch.log.Debug().Err(err).Msg("datagram response framing failed")
		return
	}
	if out.Len() > datagramSize {
		b.dispatch.log.Debug().
			Str("remote", origin.String()).
			Int("size", out.Len()).
			Msg("datagram response too large, dropped")
		return
	}
	if _, err := pc.WriteTo(out.Bytes(), origin); err != nil {
		b.dispatch.log.Warn().
			Str("remote", origin.String()).
			Err(err).
			Msg("datagram send failed")
	}
}
