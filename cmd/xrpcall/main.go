package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/xrpc/client"
	"github.com/danmuck/xrpc/xmlrpc"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "server address host:port")
	udp := flag.Bool("udp", false, "send the call as a single UDP datagram")
	timeout := flag.Duration("timeout", 30*time.Second, "per-call deadline")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalf("usage: xrpcall [flags] <method> [arg ...]")
	}
	method := flag.Arg(0)
	params := make([]xmlrpc.Value, 0, flag.NArg()-1)
	for _, raw := range flag.Args()[1:] {
		params = append(params, parseArg(raw))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*addr)
	var (
		resp xmlrpc.Response
		err  error
	)
	if *udp {
		resp, err = c.CallUDP(ctx, method, params...)
	} else {
		resp, err = c.Call(ctx, method, params...)
	}
	if err != nil {
		log.Fatal(err)
	}
	if resp.Fault != nil {
		log.Fatalf("fault %d: %s", resp.Fault.Code, resp.Fault.Message)
	}
	for _, v := range resp.Params {
		fmt.Println(formatValue(v))
	}
}

// parseArg maps a command-line literal to the narrowest wire type it
// fits: i4, then boolean, then double, with string as the fallback.
func parseArg(raw string) xmlrpc.Value {
	if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return xmlrpc.Int(int32(n))
	}
	switch raw {
	case "true":
		return xmlrpc.Bool(true)
	case "false":
		return xmlrpc.Bool(false)
	}
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return xmlrpc.Double(f)
		}
	}
	return xmlrpc.String(raw)
}

func formatValue(v xmlrpc.Value) string {
	switch val := v.(type) {
	case xmlrpc.String:
		return strconv.Quote(string(val))
	case xmlrpc.Int:
		return strconv.FormatInt(int64(val), 10)
	case xmlrpc.Bool:
		return strconv.FormatBool(bool(val))
	case xmlrpc.Double:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case xmlrpc.DateTime:
		return string(val)
	case xmlrpc.Base64:
		return string(val)
	case xmlrpc.Array:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case xmlrpc.Struct:
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + ": " + formatValue(val[name])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<nil>"
}
