// Package pipe carries handshake tokens between the worker and its controller.
package pipe

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Pipe is a turn-taking, newline-framed token channel.
// ReadToken blocks until the counterpart writes; WriteToken returns once the token is delivered.
type Pipe interface {
	ReadToken() (string, error)
	WriteToken(token string) error
}

// Fifo is a single named pipe, opened anew for each read or write.
type Fifo struct {
	Path string
}

// Ensure creates the named pipe if it does not exist.
func (fifo *Fifo) Ensure() error {
	info, err := os.Stat(fifo.Path)
	if err == nil {
		if info.Mode()&os.ModeNamedPipe == 0 {
			return errors.Wrapf(gql.ErrTransport, "%s exists and is not a named pipe", fifo.Path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(gql.ErrTransport, "%v", err)
	}
	if err = unix.Mkfifo(fifo.Path, 0o777); err != nil && !errors.Is(err, unix.EEXIST) {
		return errors.Wrapf(gql.ErrTransport, "mkfifo %s: %v", fifo.Path, err)
	}
	return nil
}

func (fifo *Fifo) ReadToken() (string, error) {
	f, err := os.OpenFile(fifo.Path, os.O_RDONLY, 0)
	if err != nil {
		return "", errors.Wrapf(gql.ErrTransport, "open for read: %v", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrapf(gql.ErrTransport, "read %s: %v", fifo.Path, err)
	}
	token := strings.TrimRight(line, "\r\n")
	if len(token) == 0 && err == io.EOF {
		return "", errors.Wrapf(gql.ErrTransport, "%s closed without a token", fifo.Path)
	}
	return token, nil
}

func (fifo *Fifo) WriteToken(token string) error {
	f, err := os.OpenFile(fifo.Path, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrapf(gql.ErrTransport, "open for write: %v", err)
	}
	_, err = f.WriteString(token + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(gql.ErrTransport, "write %s: %v", fifo.Path, err)
	}
	return nil
}

// Mem is an in-memory Pipe: reads consume scripted inbound tokens and writes are recorded.
// Reading past the script fails with ErrTransport rather than blocking.
type Mem struct {
	mu       sync.Mutex
	inbound  []string
	outbound []string
}

// NewMem returns a Mem that will deliver the given tokens in order.
func NewMem(inbound ...string) *Mem {
	return &Mem{
		inbound: inbound,
	}
}

// Push appends tokens to the inbound script.
func (mem *Mem) Push(tokens ...string) {
	mem.mu.Lock()
	mem.inbound = append(mem.inbound, tokens...)
	mem.mu.Unlock()
}

func (mem *Mem) ReadToken() (string, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if len(mem.inbound) == 0 {
		return "", errors.Wrap(gql.ErrTransport, "counterpart closed the channel")
	}
	token := mem.inbound[0]
	mem.inbound = mem.inbound[1:]
	return token, nil
}

func (mem *Mem) WriteToken(token string) error {
	mem.mu.Lock()
	mem.outbound = append(mem.outbound, token)
	mem.mu.Unlock()
	return nil
}

// Written returns a copy of every token written so far.
func (mem *Mem) Written() []string {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return append([]string(nil), mem.outbound...)
}

// Pending returns the number of inbound tokens not yet read.
func (mem *Mem) Pending() int {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return len(mem.inbound)
}

// ReadMsg reads a token and parses it as the expected message kind.
func ReadMsg(p Pipe, expect gql.MsgKind) (gql.Msg, error) {
	token, err := p.ReadToken()
	if err != nil {
		return gql.Msg{Kind: expect}, err
	}
	return gql.ParseMsg(expect, token)
}

// WriteMsg serializes msg and writes it.
func WriteMsg(p Pipe, msg gql.Msg) error {
	return p.WriteToken(msg.String())
}
