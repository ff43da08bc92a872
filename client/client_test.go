package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/xrpc/internal/testutil/testlog"
	"github.com/danmuck/xrpc/server"
	"github.com/danmuck/xrpc/xmlrpc"
)

type addArgs struct {
	A int32
	B int32
}

func startServer(t *testing.T, opts ...server.Option) *Client {
	t.Helper()
	s := server.New()
	s.RegisterValue("echo", func(params []xmlrpc.Value) xmlrpc.Response {
		return xmlrpc.Success(params...)
	})
	server.Register(s, "math.add", func(in addArgs) (int32, *xmlrpc.Fault) {
		return in.A + in.B, nil
	})
	server.Register(s, "math.div", func(in addArgs) (int32, *xmlrpc.Fault) {
		if in.B == 0 {
			return 0, xmlrpc.NewFault(1, "division by zero")
		}
		return in.A / in.B, nil
	})
	s.RegisterValue("slow", func(params []xmlrpc.Value) xmlrpc.Response {
		time.Sleep(500 * time.Millisecond)
		return xmlrpc.Success()
	})

	b, err := s.Bind("127.0.0.1:0", opts...)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	go func() { _ = b.Run() }()
	return New(b.LocalAddr().String())
}

func TestCall(t *testing.T) {
	testlog.Start(t)
	c := startServer(t)

	got, err := c.Call(context.Background(), "math.add", xmlrpc.Int(2), xmlrpc.Int(3))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if diff := cmp.Diff(xmlrpc.Success(xmlrpc.Int(5)), got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestCallReturnsFaultAsData(t *testing.T) {
	testlog.Start(t)
	c := startServer(t)

	got, err := c.Call(context.Background(), "math.div", xmlrpc.Int(1), xmlrpc.Int(0))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got.Fault == nil || got.Fault.Code != 1 || got.Fault.Message != "division by zero" {
		t.Fatalf("fault mismatch: %+v", got)
	}
}

func TestCallTyped(t *testing.T) {
	testlog.Start(t)
	c := startServer(t)

	var sum int32
	if err := c.CallTyped(context.Background(), "math.add", addArgs{A: 20, B: 22}, &sum); err != nil {
		t.Fatalf("call typed: %v", err)
	}
	if sum != 42 {
		t.Fatalf("expected 42, got %d", sum)
	}
}

func TestCallTypedFaultAsError(t *testing.T) {
	testlog.Start(t)
	c := startServer(t)

	var out int32
	err := c.CallTyped(context.Background(), "math.div", addArgs{A: 1, B: 0}, &out)
	var fault *xmlrpc.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected a fault error, got %v", err)
	}
	if fault.Code != 1 || fault.Message != "division by zero" {
		t.Fatalf("fault mismatch: %+v", fault)
	}

	err = c.CallTyped(context.Background(), "no.such.method", addArgs{A: 1, B: 2}, &out)
	if !errors.As(err, &fault) || fault.Code != 404 {
		t.Fatalf("expected 404 fault, got %v", err)
	}
}

func TestCallUDP(t *testing.T) {
	testlog.Start(t)
	c := startServer(t, server.WithUDP())

	got, err := c.CallUDP(context.Background(), "echo", xmlrpc.String("ping"))
	if err != nil {
		t.Fatalf("call udp: %v", err)
	}
	if diff := cmp.Diff(xmlrpc.Success(xmlrpc.String("ping")), got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestCallUDPRejectsOversizeRequest(t *testing.T) {
	testlog.Start(t)
	c := New("127.0.0.1:1")

	_, err := c.CallUDP(context.Background(), "echo", xmlrpc.String(strings.Repeat("x", 5000)))
	if err == nil {
		t.Fatal("expected oversize request to be rejected")
	}
}

func TestCallHonorsContextDeadline(t *testing.T) {
	testlog.Start(t)
	c := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Call(ctx, "slow"); err == nil {
		t.Fatal("expected deadline error")
	}
}
