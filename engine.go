package vmaxtui

import (
	"fmt"
	"os/exec"
	"sync"
)

// Progress is a rendering progress report from the engine.
type Progress struct {
	Pass    string
	Percent float64
	Samples int
}

func (p Progress) String() string {
	return fmt.Sprintf("%s %.1f%% (%d spp)", p.Pass, p.Percent, p.Samples)
}

// EngineObserver receives engine callbacks. The engine posts these from its
// own callback goroutine; observers must not block.
type EngineObserver interface {
	OnStarted(pass string)
	OnProgress(pass string, progress Progress)
	OnError(pass string, msg string)
	OnStopped(pass string)
}

// Engine is the single-consumer rendering contract: load an artifact, fix
// the output resolution, then start. Start and Stop return without waiting
// for the render; completion arrives via OnStopped or OnError.
type Engine interface {
	LoadScene(path string) error
	SetResolution(width, height int)
	Start() error
	Stop()
	Subscribe(observer EngineObserver)
}

// ExecEngine drives an external renderer binary. One render owns the
// process at a time; Stop kills it. Exit status is translated into the
// observer callbacks the loop relies on.
type ExecEngine struct {
	Binary string
	log    Logger

	mu        sync.Mutex
	observers []EngineObserver
	scenePath string
	width     int
	height    int
	cmd       *exec.Cmd
	stopping  bool
}

func NewExecEngine(binary string, log Logger) *ExecEngine {
	if log == nil {
		log = NewNopLogger()
	}
	return &ExecEngine{Binary: binary, width: 200, height: 200, log: log}
}

func (e *ExecEngine) Subscribe(observer EngineObserver) {
	e.mu.Lock()
	e.observers = append(e.observers, observer)
	e.mu.Unlock()
}

func (e *ExecEngine) LoadScene(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd != nil {
		return fmt.Errorf("engine busy rendering %s", e.scenePath)
	}
	e.scenePath = path
	return nil
}

func (e *ExecEngine) SetResolution(width, height int) {
	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()
}

// Start launches the renderer process and returns immediately. The exit
// watcher goroutine publishes OnStopped (or OnError for a non-zero,
// non-cancelled exit).
func (e *ExecEngine) Start() error {
	e.mu.Lock()
	if e.scenePath == "" {
		e.mu.Unlock()
		return fmt.Errorf("no scene loaded")
	}
	if e.cmd != nil {
		e.mu.Unlock()
		return fmt.Errorf("engine busy rendering %s", e.scenePath)
	}
	pass := e.scenePath
	cmd := exec.Command(e.Binary,
		"-i", pass,
		"-res", fmt.Sprintf("%dx%d", e.width, e.height))
	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("start renderer: %w", err)
	}
	e.cmd = cmd
	e.stopping = false
	observers := append([]EngineObserver(nil), e.observers...)
	e.mu.Unlock()

	for _, o := range observers {
		o.OnStarted(pass)
	}
	go e.await(cmd, pass)
	return nil
}

func (e *ExecEngine) await(cmd *exec.Cmd, pass string) {
	err := cmd.Wait()

	e.mu.Lock()
	stopped := e.stopping
	e.cmd = nil
	e.scenePath = ""
	observers := append([]EngineObserver(nil), e.observers...)
	e.mu.Unlock()

	if err != nil && !stopped {
		for _, o := range observers {
			o.OnError(pass, err.Error())
		}
		return
	}
	for _, o := range observers {
		o.OnStopped(pass)
	}
}

// Stop kills the render process if one is running. The observer's OnStopped
// fires from the exit watcher once the process is reaped.
func (e *ExecEngine) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.stopping = true
	e.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			e.log.Warnf("stop renderer: %v", err)
		}
	}
}
