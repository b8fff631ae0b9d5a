package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Client frames requests onto a bridge: "<length>\n<body>" in both
// directions. A zero-length response signals a service failure, followed
// by one error line. Calls are serialized; the service handles one request
// at a time.
type Client struct {
	mu     sync.Mutex
	w      io.Writer
	r      *bufio.Reader
	broken bool
}

// NewClient wraps a bridge's streams in a framed client.
func NewClient(b *Bridge) *Client {
	return newClient(b.Stdin(), b.Stdout())
}

func newClient(w io.Writer, r io.Reader) *Client {
	return &Client{w: w, r: bufio.NewReader(r)}
}

// Call sends one framed request and returns the response body. ctx bounds
// the wait; an interrupted call leaves the stream mid-frame, so the client
// refuses further use afterwards.
func (c *Client) Call(ctx context.Context, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errors.New("empty request payload")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return nil, errors.New("client out of sync after interrupted call")
	}

	type result struct {
		body []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := c.roundTrip(payload)
		ch <- result{body, err}
	}()

	select {
	case res := <-ch:
		return res.body, res.err
	case <-ctx.Done():
		c.broken = true
		return nil, fmt.Errorf("waiting for service response: %w", ctx.Err())
	}
}

func (c *Client) roundTrip(payload []byte) ([]byte, error) {
	if _, err := fmt.Fprintf(c.w, "%d\n", len(payload)); err != nil {
		return nil, fmt.Errorf("write request header: %w", err)
	}
	if _, err := c.w.Write(payload); err != nil {
		return nil, fmt.Errorf("write request body: %w", err)
	}

	header, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("service closed the stream")
		}
		return nil, fmt.Errorf("read response header: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return nil, fmt.Errorf("bad response header %q: %w", strings.TrimSpace(header), err)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative response length %d", n)
	}
	if n == 0 {
		line, _ := c.r.ReadString('\n')
		return nil, fmt.Errorf("service error: %s", strings.TrimSpace(line))
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return nil, fmt.Errorf("read response body (%d bytes): %w", n, err)
	}
	return body, nil
}
