package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var errDone = errors.New("listen: enough events")

type listenOptions struct {
	addr   string
	ws     bool
	pretty bool
	max    int
}

func newListenCommand(opts *RootOptions) *cobra.Command {
	var l listenOptions
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print book changes as they happen",
		Long: `Print book changes pushed by the server.

By default this connects to the TCP sync port; --ws uses the /ws websocket
on the API host instead. The connection is retried until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p := &eventPrinter{w: cmd.OutOrStdout(), pretty: l.pretty, max: l.max}

			for {
				var err error
				if l.ws {
					var endpoint string
					endpoint, err = websocketURL(opts.API, "/ws")
					if err != nil {
						return fmt.Errorf("ws url: %w", err)
					}
					err = listenWebSocket(ctx, endpoint, p)
				} else {
					err = listenTCP(ctx, l.addr, p)
				}
				if errors.Is(err, errDone) || ctx.Err() != nil {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[sync] disconnected: %v\n", err)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
			}
		},
	}
	cmd.Flags().StringVar(&l.addr, "addr", "127.0.0.1:7070", "TCP sync server address")
	cmd.Flags().BoolVar(&l.ws, "ws", false, "use the websocket endpoint instead of TCP")
	cmd.Flags().BoolVar(&l.pretty, "pretty", false, "pretty print JSON events")
	cmd.Flags().IntVar(&l.max, "max", 0, "exit after this many events (0 = never)")
	return cmd
}

type eventPrinter struct {
	w      io.Writer
	pretty bool
	max    int
	seen   int
}

// print writes one event line. Welcome messages are not counted.
func (p *eventPrinter) print(line []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		fmt.Fprintln(p.w, string(line))
		return nil
	}
	if obj["type"] == "welcome" {
		return nil
	}

	if p.pretty {
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Fprintln(p.w, string(b))
	} else {
		fmt.Fprintln(p.w, string(line))
	}

	p.seen++
	if p.max > 0 && p.seen >= p.max {
		return errDone
	}
	return nil
}

func listenTCP(ctx context.Context, addr string, p *eventPrinter) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		if err := p.print(sc.Bytes()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func listenWebSocket(ctx context.Context, endpoint string, p *eventPrinter) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		for _, line := range splitLines(msg) {
			if err := p.print(line); err != nil {
				return err
			}
		}
	}
}

func splitLines(b []byte) [][]byte {
	var out [][]byte
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := append([]byte(nil), sc.Bytes()...)
		if len(line) > 0 {
			out = append(out, line)
		}
	}
	return out
}
