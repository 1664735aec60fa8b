package vmaxtui

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the render loop period.
const DefaultPollInterval = 900 * time.Millisecond

// RenderLoop is the single-slot consumer of the dispatcher's queues. Each
// tick it drains newly observed work into its own queues, then either
// claims the render slot for the next artifact or, while a render is in
// flight, services cancellations. All loop state is touched only on the
// loop goroutine except activeRender, which the engine's stopped/error
// callbacks clear.
type RenderLoop struct {
	Period     time.Duration
	Resolution [2]int

	disp    *Dispatcher
	engine  Engine
	convert func(vmaxPath string) error
	log     Logger

	adds    *FileQueue
	removes *FileQueue

	activeRender    atomic.Bool
	currentArtifact string
}

func NewRenderLoop(disp *Dispatcher, engine Engine, convert func(string) error, log Logger) *RenderLoop {
	if log == nil {
		log = NewNopLogger()
	}
	l := &RenderLoop{
		Period:     DefaultPollInterval,
		Resolution: [2]int{200, 200},
		disp:       disp,
		engine:     engine,
		convert:    convert,
		log:        log,
		adds:       NewFileQueue(),
		removes:    NewFileQueue(),
	}
	engine.Subscribe((*loopObserver)(l))
	return l
}

// Run ticks until ctx is cancelled.
func (l *RenderLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs one loop iteration.
func (l *RenderLoop) Tick() {
	// Adds drain before removes on every iteration; the interleaving is
	// deterministic.
	l.disp.Adds.DrainInto(l.adds)
	l.disp.Removes.DrainInto(l.removes)

	if l.adds.Empty() {
		// Deletes with no pending work are dropped.
		l.removes.Clear()
		return
	}

	if l.activeRender.CompareAndSwap(false, true) {
		// The slot was free, so any previous artifact is done; drop it
		// before the cancellation path can compare against it.
		l.currentArtifact = ""
		path, _ := l.adds.Pop()
		switch {
		case strings.HasSuffix(path, ".bsz"):
			l.startRender(path)
		case strings.HasSuffix(path, ".vmax"):
			// Conversion is synchronous and keeps the slot held for its
			// duration; renders queued behind it wait.
			if err := l.convert(path); err != nil {
				l.log.Errorf("convert %s: %v", path, err)
			}
			l.activeRender.Store(false)
		default:
			l.log.Debugf("no handler for %s, skipping", path)
			l.activeRender.Store(false)
		}
		return
	}

	// Render slot is taken: service cancellations instead.
	for {
		path, ok := l.removes.Pop()
		if !ok {
			break
		}
		if path == l.currentArtifact {
			l.log.Infof("stopping render of deleted %s", path)
			l.engine.Stop()
			l.activeRender.Store(false)
			l.currentArtifact = ""
		} else if l.adds.Remove(path) {
			l.log.Infof("unqueued deleted %s", path)
		}
	}
}

func (l *RenderLoop) startRender(path string) {
	if err := l.engine.LoadScene(path); err != nil {
		l.log.Errorf("load %s: %v", path, err)
		l.activeRender.Store(false)
		return
	}
	l.engine.SetResolution(l.Resolution[0], l.Resolution[1])
	if err := l.engine.Start(); err != nil {
		l.log.Errorf("start %s: %v", path, err)
		l.activeRender.Store(false)
		return
	}
	l.currentArtifact = path
	l.log.Infof("rendering %s", path)
}

// Rendering reports whether the render slot is held.
func (l *RenderLoop) Rendering() bool {
	return l.activeRender.Load()
}

// loopObserver receives engine callbacks for the loop. Stopped and error
// both release the render slot; the started/progress pair is informational.
type loopObserver RenderLoop

func (o *loopObserver) OnStarted(pass string) {
	o.log.Infof("render started: %s", pass)
}

func (o *loopObserver) OnProgress(pass string, progress Progress) {
	o.log.Debugf("%s", progress)
}

func (o *loopObserver) OnError(pass string, msg string) {
	o.log.Errorf("render %s: %s", pass, msg)
	o.activeRender.Store(false)
}

func (o *loopObserver) OnStopped(pass string) {
	o.log.Infof("render stopped: %s", pass)
	o.activeRender.Store(false)
}
