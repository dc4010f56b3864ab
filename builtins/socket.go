package builtins

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
)

// dialTimeout bounds connection establishment started by scripts.
const dialTimeout = 30 * time.Second

// recvChunk is the per-call read budget of the recv shim.
const recvChunk = 4096

// Socket is an opaque connection value held in script variables. Scripts
// obtain one from connect() and pass it to send(), recv() and sockclose().
type Socket struct {
	conn   net.Conn
	addr   string
	closed bool
}

func (s *Socket) String() string {
	return "<socket " + s.addr + ">"
}

// ioResult carries the outcome of a background network operation back onto
// the reactor. When the waiting task is torn down before completion the
// shim marks the result abandoned and the completion handler disposes of
// the connection instead of waking anyone.
type ioResult struct {
	conn      net.Conn
	n         int
	data      []byte
	err       error
	abandoned bool
}

func wantSocket(name string, args []interp.Value, i int) (*Socket, error) {
	s, ok := args[i].(*Socket)
	if !ok {
		return nil, interp.NewRaised("TypeError",
			fmt.Sprintf("%s: argument %d must be a socket, not %s", name, i+1, interp.TypeName(args[i])))
	}
	if s.closed {
		return nil, interp.NewRaised("SocketError", name+": socket is closed")
	}
	return s, nil
}

// connectBuiltin establishes a TCP connection and returns a socket value.
// It accepts either connect(host, port) or connect("host:port").
func connectBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "connect",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if len(args) != 1 && len(args) != 2 {
				return nil, interp.NewRaised("TypeError", "connect expects 1 or 2 arguments")
			}
			addr, err := wantString("connect", args, 0)
			if err != nil {
				return nil, err
			}
			if len(args) == 2 {
				port, err := wantInt("connect", args, 1)
				if err != nil {
					return nil, err
				}
				addr = net.JoinHostPort(addr, strconv.FormatInt(port, 10))
			}
			task, err := activeTask(e)
			if err != nil {
				return nil, err
			}
			tracer().P("addr", addr).Debugf("connecting")
			res := &ioResult{}
			e.Reactor().Background("connect "+addr, func() func() {
				conn, derr := net.DialTimeout("tcp", addr, dialTimeout)
				return func() {
					res.conn, res.err = conn, derr
					if res.abandoned {
						if conn != nil {
							conn.Close()
						}
						return
					}
					task.Wakeup()
				}
			})
			if err := e.Yield(); err != nil {
				res.abandoned = true
				if res.conn != nil {
					res.conn.Close()
				}
				return nil, hostError(err)
			}
			if res.err != nil {
				return nil, interp.NewRaised("SocketError", res.err.Error())
			}
			return &Socket{conn: res.conn, addr: addr}, nil
		},
	}
}

// sendBuiltin writes a string to a socket and returns the number of bytes
// written. An optional flags argument is accepted for symmetry with the
// SEND_LAST and SEND_FLUSH constants; a plain stream connection has no use
// for either.
func sendBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "send",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if len(args) != 2 && len(args) != 3 {
				return nil, interp.NewRaised("TypeError", "send expects 2 or 3 arguments")
			}
			sock, err := wantSocket("send", args, 0)
			if err != nil {
				return nil, err
			}
			data, err := wantString("send", args, 1)
			if err != nil {
				return nil, err
			}
			if len(args) == 3 {
				if _, err := wantInt("send", args, 2); err != nil {
					return nil, err
				}
			}
			task, err := activeTask(e)
			if err != nil {
				return nil, err
			}
			res := &ioResult{}
			e.Reactor().Background("send "+sock.addr, func() func() {
				n, werr := io.WriteString(sock.conn, data)
				return func() {
					res.n, res.err = n, werr
					if res.abandoned {
						return
					}
					task.Wakeup()
				}
			})
			if err := e.Yield(); err != nil {
				res.abandoned = true
				sock.conn.Close()
				sock.closed = true
				return nil, hostError(err)
			}
			if res.err != nil {
				return nil, interp.NewRaised("SocketError", res.err.Error())
			}
			return int64(res.n), nil
		},
	}
}

// recvBuiltin reads the next chunk from a socket as a string. End of stream
// yields the empty string.
func recvBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "recv",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := wantArgs("recv", args, 1); err != nil {
				return nil, err
			}
			sock, err := wantSocket("recv", args, 0)
			if err != nil {
				return nil, err
			}
			task, err := activeTask(e)
			if err != nil {
				return nil, err
			}
			res := &ioResult{}
			e.Reactor().Background("recv "+sock.addr, func() func() {
				buf := make([]byte, recvChunk)
				n, rerr := sock.conn.Read(buf)
				return func() {
					res.data, res.err = buf[:n], rerr
					if res.abandoned {
						return
					}
					task.Wakeup()
				}
			})
			if err := e.Yield(); err != nil {
				res.abandoned = true
				sock.conn.Close()
				sock.closed = true
				return nil, hostError(err)
			}
			if res.err == io.EOF {
				return "", nil
			}
			if res.err != nil {
				return nil, interp.NewRaised("SocketError", res.err.Error())
			}
			return string(res.data), nil
		},
	}
}

// closeBuiltin closes a socket. Closing an already closed socket is a
// no-op.
func closeBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "close",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := wantArgs("close", args, 1); err != nil {
				return nil, err
			}
			sock, ok := args[0].(*Socket)
			if !ok {
				return nil, interp.NewRaised("TypeError",
					"close: argument 1 must be a socket, not "+interp.TypeName(args[0]))
			}
			if !sock.closed {
				sock.closed = true
				if err := sock.conn.Close(); err != nil {
					tracer().P("addr", sock.addr).Infof("close: %v", err)
				}
			}
			return nil, nil
		},
	}
}
