// SPDX-License-Identifier: Apache-2.0

package navigator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrInterrupted is returned by Ask when an interrupt arrives while waiting for input.
var ErrInterrupted = errors.New("interrupted")

// Prompter reads answers line by line while watching for interrupts.
type Prompter struct {
	in         io.Reader
	out        io.Writer
	interrupts <-chan os.Signal

	once  sync.Once
	lines chan string
}

// NewPrompter creates a prompter. interrupts may be nil.
func NewPrompter(in io.Reader, out io.Writer, interrupts <-chan os.Signal) *Prompter {
	return &Prompter{in: in, out: out, interrupts: interrupts}
}

func (p *Prompter) start() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		reader := bufio.NewReader(p.in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" || err == nil {
				p.lines <- strings.TrimRight(line, "\r\n")
			}
			if err != nil {
				return
			}
		}
	}()
}

// Ask prints label and waits for one line of input, returned without surrounding
// whitespace. It returns io.EOF once input is exhausted.
func (p *Prompter) Ask(label string) (string, error) {
	p.once.Do(p.start)

	fmt.Fprintf(p.out, "\n%s: ", label)
	select {
	case line, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	case <-p.interrupts:
		fmt.Fprintln(p.out)
		return "", ErrInterrupted
	}
}

// Cancelable derives a context that is cancelled by the next interrupt. stop
// releases the watcher and reports whether an interrupt was consumed.
func (p *Prompter) Cancelable(parent context.Context) (ctx context.Context, stop func() bool) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	var (
		wg          sync.WaitGroup
		interrupted bool
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-p.interrupts:
			interrupted = true
			cancel()
		case <-done:
		}
	}()

	return ctx, func() bool {
		close(done)
		wg.Wait()
		cancel()
		return interrupted
	}
}
