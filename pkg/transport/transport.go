// Package transport provides the byte channels a host can reach the
// device over: a serial port, a TCP socket, or a WebSocket bridge
// carrying the identical untyped stream.
package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goburrow/serial"
	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// Handler bridges one host connection to the device.
type Handler func(ctx context.Context, rw io.ReadWriter) error

// OpenSerial opens a serial port as the device's byte channel.
// 8 data bits, 1 stop bit, no parity, matching the host-side senders.
func OpenSerial(address string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(&serial.Config{
		Address:  address,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &serialStream{Port: port}, nil
}

// serialStream retries timed-out reads so an idle link does not end
// the session.
type serialStream struct {
	serial.Port
}

func (s *serialStream) Read(p []byte) (int, error) {
	for {
		n, err := s.Port.Read(p)
		if err == serial.ErrTimeout {
			continue
		}
		return n, err
	}
}

// ServeTCP accepts host connections on addr and bridges them to the
// handler one at a time: the device is a single-host peripheral, so
// connections are served sequentially, never concurrently.
func ServeTCP(ctx context.Context, addr string, handle Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	glog.Infof("listening on tcp %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		glog.V(1).Infof("host connected: %s", conn.RemoteAddr())
		if err := handle(ctx, conn); err != nil {
			glog.Errorf("host session: %v", err)
		}
		conn.Close()
		glog.V(1).Infof("host disconnected: %s", conn.RemoteAddr())
	}
}

// ServeWebSocket bridges the byte stream over a WebSocket endpoint at
// path, for hosts that cannot open a raw socket. Frames carry raw
// bytes; framing on the wire protocol level is unchanged.
func ServeWebSocket(ctx context.Context, addr, path string, handle Handler) error {
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		glog.V(1).Infof("ws host connected: %s", conn.Request().RemoteAddr)
		if err := handle(ctx, conn); err != nil {
			glog.Errorf("ws host session: %v", err)
		}
	}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	glog.Infof("listening on ws %s%s", addr, path)
	err := srv.ListenAndServe()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
