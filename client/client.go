// Package client calls an XML-RPC endpoint over HTTP-framed TCP or
// single-datagram UDP.
package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danmuck/xrpc/xmlrpc"
)

// rpcPath is the conventional request path for XML-RPC endpoints.
const rpcPath = "/RPC2"

// maxDatagram caps a UDP exchange in each direction.
const maxDatagram = 4096

const defaultTimeout = 30 * time.Second

// Client issues calls against one endpoint address.
type Client struct {
	endpoint string
	httpc    *http.Client
	dialer   net.Dialer
}

// New returns a client for the endpoint address, e.g. "127.0.0.1:7070".
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: defaultTimeout},
	}
}

// Call invokes method over TCP and returns the decoded protocol
// response. A fault response is data, not an error; the error covers
// transport and codec failures only.
func (c *Client) Call(ctx context.Context, method string, params ...xmlrpc.Value) (xmlrpc.Response, error) {
	var body bytes.Buffer
	if err := xmlrpc.EncodeCall(&body, xmlrpc.Call{Name: method, Params: params}); err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: encode call failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+c.endpoint+rpcPath, &body)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: request failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return xmlrpc.Response{}, fmt.Errorf("client: received status code: %d", resp.StatusCode)
	}
	decoded, err := xmlrpc.ParseResponse(resp.Body)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: decode response failed: %w", err)
	}
	return decoded, nil
}

// CallTyped bridges args into call params and the success params back
// into target, which may be nil to discard them. A fault response is
// returned as its *xmlrpc.Fault error.
func (c *Client) CallTyped(ctx context.Context, method string, args any, target any) error {
	params, err := xmlrpc.IntoParams(args)
	if err != nil {
		return fmt.Errorf("client: encode params failed: %w", err)
	}
	resp, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if resp.Fault != nil {
		return resp.Fault
	}
	if target == nil {
		return nil
	}
	if err := xmlrpc.FromParams(resp.Params, target); err != nil {
		return fmt.Errorf("client: decode result failed: %w", err)
	}
	return nil
}

// CallUDP invokes method as a single datagram exchange. The framed
// request and the reply must each fit one datagram; the context deadline
// bounds the whole exchange, falling back to the client default.
func (c *Client) CallUDP(ctx context.Context, method string, params ...xmlrpc.Value) (xmlrpc.Response, error) {
	var body bytes.Buffer
	if err := xmlrpc.EncodeCall(&body, xmlrpc.Call{Name: method, Params: params}); err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: encode call failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+c.endpoint+rpcPath, &body)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-Request-Id", uuid.NewString())

	var framed bytes.Buffer
	if err := req.Write(&framed); err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: frame request failed: %w", err)
	}
	if framed.Len() > maxDatagram {
		return xmlrpc.Response{}, fmt.Errorf("client: request of %d bytes exceeds one datagram", framed.Len())
	}

	conn, err := c.dialer.DialContext(ctx, "udp", c.endpoint)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: dial failed: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: set deadline failed: %w", err)
	}

	if _, err := conn.Write(framed.Bytes()); err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: send failed: %w", err)
	}
	reply := make([]byte, maxDatagram)
	n, err := conn.Read(reply)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: receive failed: %w", err)
	}

	httpResp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(reply[:n])), req)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: parse reply failed: %w", err)
	}
	defer drainAndClose(httpResp.Body)

	if httpResp.StatusCode != http.StatusOK {
		return xmlrpc.Response{}, fmt.Errorf("client: received status code: %d", httpResp.StatusCode)
	}
	decoded, err := xmlrpc.ParseResponse(httpResp.Body)
	if err != nil {
		return xmlrpc.Response{}, fmt.Errorf("client: decode response failed: %w", err)
	}
	return decoded, nil
}

// drainAndClose empties body before closing so the transport can reuse
// or cleanly tear down the connection.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
