package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rollkit/disputes/log"
)

/*
type FooService struct {
	BaseService
	// extra fields for FooService
}

func NewFooService(logger log.Logger) *FooService {
	fs := &FooService{}
	fs.BaseService = *NewBaseService(logger, "FooService", fs)
	return fs
}

func (fs *FooService) OnStart(ctx context.Context) error {
	go fs.loop(ctx) // ctx is cancelled on Stop
	return nil
}

func (fs *FooService) OnStop(ctx context.Context) {
	// cleanup resources
}
*/

var (
	// ErrAlreadyStarted is returned when somebody tries to start an already running service.
	ErrAlreadyStarted = errors.New("already started")
	// ErrNotStarted is returned when somebody tries to stop a not running service.
	ErrNotStarted = errors.New("not started")
)

// Service defines a service that can be started and stopped.
type Service interface {
	// Start the service. If it's already started, returns an error.
	Start(context.Context) error
	OnStart(context.Context) error

	// Stop the service. If it's not started, returns an error.
	Stop(context.Context) error
	OnStop(context.Context)

	// Return true if the service is running.
	IsRunning() bool

	// Quit returns a channel which is closed once the service is stopped.
	Quit() <-chan struct{}

	// String returns a string representation of the service.
	String() string
}

// BaseService uses a cancellable context to manage service lifetime.
// The context passed to OnStart is cancelled when the service is stopped.
type BaseService struct {
	Logger log.Logger
	name   string
	impl   Service

	mtx    *sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBaseService creates a new BaseService.
// impl is the embedding service that implements OnStart and OnStop.
func NewBaseService(logger log.Logger, name string, impl Service) *BaseService {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &BaseService{
		Logger: logger,
		name:   name,
		impl:   impl,
		mtx:    new(sync.Mutex),
	}
}

// Start derives the service context from ctx and calls OnStart.
func (bs *BaseService) Start(ctx context.Context) error {
	bs.mtx.Lock()
	defer bs.mtx.Unlock()
	if bs.ctx != nil {
		bs.Logger.Debug("service start",
			"msg", fmt.Sprintf("Not starting %v service -- already started", bs.name))
		return ErrAlreadyStarted
	}

	bs.ctx, bs.cancel = context.WithCancel(ctx)
	bs.Logger.Info("service start", "msg", fmt.Sprintf("Starting %v service", bs.name))

	if err := bs.impl.OnStart(bs.ctx); err != nil {
		bs.cancel()
		bs.ctx, bs.cancel = nil, nil
		return err
	}
	return nil
}

// OnStart does nothing by default.
func (bs *BaseService) OnStart(ctx context.Context) error { return nil }

// Stop calls OnStop and cancels the service context.
func (bs *BaseService) Stop(ctx context.Context) error {
	bs.mtx.Lock()
	defer bs.mtx.Unlock()
	if bs.ctx == nil {
		bs.Logger.Error(fmt.Sprintf("Not stopping %v service -- has not been started yet", bs.name))
		return ErrNotStarted
	}

	bs.Logger.Info("service stop", "msg", fmt.Sprintf("Stopping %v service", bs.name))
	bs.impl.OnStop(ctx)
	bs.cancel()
	bs.ctx, bs.cancel = nil, nil
	return nil
}

// OnStop does nothing by default.
func (bs *BaseService) OnStop(ctx context.Context) {}

// IsRunning returns true between successful Start and Stop.
func (bs *BaseService) IsRunning() bool {
	bs.mtx.Lock()
	defer bs.mtx.Unlock()
	return bs.ctx != nil
}

// Quit returns the done channel of the service context.
// A closed channel is returned when the service is not running.
func (bs *BaseService) Quit() <-chan struct{} {
	bs.mtx.Lock()
	defer bs.mtx.Unlock()
	if bs.ctx != nil {
		return bs.ctx.Done()
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// String returns the service name.
func (bs *BaseService) String() string {
	return bs.name
}
