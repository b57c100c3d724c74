package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fooService struct {
	BaseService
	started, stopped int
	startErr         error
}

func newFooService() *fooService {
	fs := &fooService{}
	fs.BaseService = *NewBaseService(nil, "Foo", fs)
	return fs
}

func (fs *fooService) OnStart(ctx context.Context) error {
	fs.started++
	return fs.startErr
}

func (fs *fooService) OnStop(ctx context.Context) {
	fs.stopped++
}

func TestBaseServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	fs := newFooService()

	assert.False(t, fs.IsRunning())
	assert.ErrorIs(t, fs.Stop(ctx), ErrNotStarted)

	require.NoError(t, fs.Start(ctx))
	assert.True(t, fs.IsRunning())
	assert.ErrorIs(t, fs.Start(ctx), ErrAlreadyStarted)
	assert.Equal(t, 1, fs.started)

	quit := fs.Quit()
	select {
	case <-quit:
		t.Fatal("quit closed while running")
	default:
	}

	require.NoError(t, fs.Stop(ctx))
	assert.False(t, fs.IsRunning())
	assert.Equal(t, 1, fs.stopped)
	<-quit
	<-fs.Quit()
	assert.Equal(t, "Foo", fs.String())
}

func TestBaseServiceStartError(t *testing.T) {
	fs := newFooService()
	fs.startErr = errors.New("boom")

	err := fs.Start(context.Background())
	assert.ErrorIs(t, err, fs.startErr)
	assert.False(t, fs.IsRunning())
}
