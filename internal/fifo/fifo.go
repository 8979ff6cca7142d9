package fifo

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const (
	DefaultRequestPath  = "input_fifo"
	DefaultResponsePath = "output_fifo"
	DefaultPerm         = os.FileMode(0o666)
)

// Pair names the request and response pipes shared by the server and its
// clients.
type Pair struct {
	RequestPath  string
	ResponsePath string
	Perm         os.FileMode
}

// DefaultPair returns the pipe pair at the conventional relative paths.
func DefaultPair() Pair {
	return Pair{
		RequestPath:  DefaultRequestPath,
		ResponsePath: DefaultResponsePath,
		Perm:         DefaultPerm,
	}
}

// Create makes both named pipes with Perm, regardless of the process umask.
// A pipe that already exists is left alone.
func (p Pair) Create() error {
	perm := p.Perm
	if perm == 0 {
		perm = DefaultPerm
	}
	for _, path := range []string{p.RequestPath, p.ResponsePath} {
		if err := mkfifo(path, perm); err != nil {
			return err
		}
	}
	return nil
}

// Remove unlinks both pipes and the client lock file. Missing files are not
// an error.
func (p Pair) Remove() error {
	var errs []error
	for _, path := range []string{p.RequestPath, p.ResponsePath, p.LockPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Exists reports whether both pipes are present as FIFOs.
func (p Pair) Exists() bool {
	return isFIFO(p.RequestPath) && isFIFO(p.ResponsePath)
}

// OpenRequestReader opens the request pipe for reading. It blocks until a
// writer opens the other end.
func (p Pair) OpenRequestReader() (io.ReadCloser, error) {
	return openRead(p.RequestPath)
}

// OpenResponseWriter opens the response pipe for writing. It blocks until a
// reader opens the other end.
func (p Pair) OpenResponseWriter() (io.WriteCloser, error) {
	return openWrite(p.ResponsePath)
}

// OpenRequestWriter opens the request pipe for writing (client side).
func (p Pair) OpenRequestWriter() (io.WriteCloser, error) {
	return openWrite(p.RequestPath)
}

// OpenResponseReader opens the response pipe for reading (client side).
func (p Pair) OpenResponseReader() (io.ReadCloser, error) {
	return openRead(p.ResponsePath)
}

func mkfifo(path string, perm os.FileMode) error {
	err := unix.Mkfifo(path, uint32(perm.Perm()))
	if errors.Is(err, unix.EEXIST) {
		return nil
	}
	if err != nil {
		return &os.PathError{Op: "mkfifo", Path: path, Err: err}
	}
	// mkfifo applies the umask.
	return os.Chmod(path, perm.Perm())
}

func openRead(path string) (io.ReadCloser, error) {
	f, err := open(path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func openWrite(path string) (io.WriteCloser, error) {
	f, err := open(path, os.O_WRONLY)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func open(path string, flag int) (*os.File, error) {
	if !isFIFO(path) {
		return nil, fmt.Errorf("open %s: not a named pipe", path)
	}
	return os.OpenFile(path, flag, 0)
}

func isFIFO(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&os.ModeNamedPipe != 0
}
