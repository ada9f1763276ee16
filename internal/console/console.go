package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Console is a line-oriented prompter over a reader and a writer. Reads run
// on a background goroutine so that ReadLine can return as soon as ctx is
// done; a line typed after that is delivered to the next ReadLine.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	once      sync.Once
	closeOnce sync.Once
	lines     chan string
	done      chan struct{}
	err       error // set before lines is closed
}

var promptColor = color.New(color.FgGreen, color.Bold)

func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// Close releases the reader goroutine. ReadLine returns io.EOF afterwards.
// A Read already blocked on the underlying reader stays blocked until that
// reader returns.
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-c.done:
		return "", io.EOF
	default:
	}
	c.once.Do(func() { go c.readLoop() })

	fmt.Fprint(c.out, promptColor.Sprint(prompt))
	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case <-c.done:
		return "", io.EOF
	case line, ok := <-c.lines:
		if !ok {
			return "", c.err
		}
		return line, nil
	}
}

func (c *Console) readLoop() {
	for {
		line, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			c.err = err
			close(c.lines)
			return
		}
		select {
		case c.lines <- strings.TrimRight(line, "\r\n"):
		case <-c.done:
			return
		}
	}
}

func (c *Console) Say(text string) {
	fmt.Fprintf(c.out, "\n%s\n", text)
}
