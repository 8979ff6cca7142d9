package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pipefilter/internal/shared/id"
	"github.com/GriffinCanCode/pipefilter/internal/testutil"
)

func TestHandleOpensBothPipesOnce(t *testing.T) {
	pipes, out := testutil.NewMockPipes(t, "Mixed123:upper\x00")

	res, err := New(pipes, NewLock(), Options{}).Handle(context.Background())
	require.NoError(t, err)

	pipes.AssertExpectations(t)
	assert.Equal(t, "MIXED123", res.Response)
	assert.Equal(t, "MIXED123\x00", out.String())
	assert.True(t, out.Closed)
	assert.True(t, id.IsValid(res.RequestID.String()))
}

func TestHandleSkipsResponseWhenRequestOpenFails(t *testing.T) {
	pipes := new(testutil.MockPipes)
	pipes.On("OpenRequestReader").Return(nil, errors.New("no such pipe")).Once()

	_, err := New(pipes, NewLock(), Options{}).Handle(context.Background())
	assert.ErrorIs(t, err, ErrPipeOpen)

	pipes.AssertExpectations(t)
	pipes.AssertNotCalled(t, "OpenResponseWriter")
}
