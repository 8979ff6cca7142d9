// Package testutil provides testing utilities and helpers for package tests.
package testutil

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pipefilter/internal/fifo"
)

// TempPair creates a fresh pipe pair inside t.TempDir.
func TempPair(t *testing.T) fifo.Pair {
	t.Helper()
	dir := t.TempDir()
	p := fifo.Pair{
		RequestPath:  filepath.Join(dir, fifo.DefaultRequestPath),
		ResponsePath: filepath.Join(dir, fifo.DefaultResponsePath),
		Perm:         fifo.DefaultPerm,
	}
	require.NoError(t, p.Create())
	return p
}

// MockPipes is a mock implementation of the server's side of a pipe pair.
type MockPipes struct {
	mock.Mock
}

// OpenRequestReader mocks the OpenRequestReader method.
func (m *MockPipes) OpenRequestReader() (io.ReadCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// OpenResponseWriter mocks the OpenResponseWriter method.
func (m *MockPipes) OpenResponseWriter() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

// NewMockPipes creates mock pipes that serve request and capture the
// response in the returned buffer.
func NewMockPipes(t *testing.T, request string) (*MockPipes, *ClosingBuffer) {
	t.Helper()
	m := new(MockPipes)
	out := new(ClosingBuffer)

	m.On("OpenRequestReader").Return(io.NopCloser(bytes.NewBufferString(request)), nil).Once()
	m.On("OpenResponseWriter").Return(out, nil).Once()

	return m, out
}

// ClosingBuffer is a bytes.Buffer that records Close.
type ClosingBuffer struct {
	bytes.Buffer
	Closed bool
}

// Close marks the buffer closed.
func (b *ClosingBuffer) Close() error {
	b.Closed = true
	return nil
}
