package vmaxtui

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// interruptGrace is how long an interrupted service waits for the watcher
// and engine to wind down before the process exits.
const interruptGrace = 100 * time.Millisecond

// Service is the watch-mode assembly: watcher, dispatcher, converter,
// engine and render loop, living exactly as long as one watch run. All
// run state lives here; there are no package globals.
type Service struct {
	cfg     Config
	log     Logger
	disp    *Dispatcher
	watcher *Watcher
	engine  Engine
	loop    *RenderLoop
}

// NewService wires a service watching dir. A nil engine gets the external
// renderer binary from the config.
func NewService(cfg Config, engine Engine, log Logger) (*Service, error) {
	if log == nil {
		log = NewDefaultLogger("vmaxtui", cfg.Debug)
	}
	if engine == nil {
		engine = NewExecEngine(cfg.EngineBinary, log)
	}
	disp := NewDispatcher(log)
	watcher, err := NewWatcher(disp, log)
	if err != nil {
		return nil, err
	}
	converter := NewConverter(log)
	loop := NewRenderLoop(disp, engine, func(path string) error {
		return converter.ConvertFile(path, "")
	}, log)
	loop.Period = cfg.PollInterval
	loop.Resolution = [2]int{cfg.RenderWidth, cfg.RenderHeight}
	return &Service{
		cfg:     cfg,
		log:     log,
		disp:    disp,
		watcher: watcher,
		engine:  engine,
		loop:    loop,
	}, nil
}

// Run watches dir until the context is cancelled or an interrupt arrives.
// The watcher pumps on its own goroutine; the render loop ticks on the
// calling one.
func (s *Service) Run(ctx context.Context, dir string) error {
	if err := s.watcher.Watch(dir); err != nil {
		return err
	}
	defer s.watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		s.log.Infof("interrupt, shutting down")
		s.disp.Stop()
		s.engine.Stop()
		time.Sleep(interruptGrace)
		cancel()
	}()

	go s.watcher.Run(ctx)

	s.log.Infof("watching %s (poll %s)", dir, s.cfg.PollInterval)
	s.loop.Run(ctx)
	return nil
}
