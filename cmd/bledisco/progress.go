package main

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter keeps a one-line scan status ("Scanning (3 found, 7s left)") on a
// terminal. It is single-use: Start at most once, Stop exactly once.
type ProgressPrinter struct {
	w        io.Writer
	prefix   string
	duration time.Duration // 0 counts up instead of down
	found    atomic.Int64

	startTime time.Time
	stopChan  chan struct{}
	done      chan struct{}
	started   atomic.Bool
	stopped   atomic.Bool
}

// NewProgressPrinter creates a printer writing to w. A zero duration shows elapsed time.
func NewProgressPrinter(w io.Writer, prefix string, duration time.Duration) *ProgressPrinter {
	return &ProgressPrinter{w: w, prefix: prefix, duration: duration}
}

// Start begins displaying progress updates in a background goroutine.
// Panics if called more than once on the same ProgressPrinter instance.
func (p *ProgressPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		panic("ProgressPrinter.Start called more than once")
	}

	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	p.startTime = time.Now()
	p.print()

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(progressUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				p.print()
			}
		}
	}()
}

// Found records one more discovered peripheral.
func (p *ProgressPrinter) Found() {
	p.found.Add(1)
}

// Clear erases the status line so other output can be printed; the next tick redraws it.
func (p *ProgressPrinter) Clear() {
	fmt.Fprint(p.w, clearLineSequence)
}

// Stop stops the progress display and clears the line. Safe to call more than once.
func (p *ProgressPrinter) Stop() {
	if !p.started.Load() || !p.stopped.CompareAndSwap(false, true) {
		return
	}
	close(p.stopChan)
	<-p.done
	p.Clear()
}

func (p *ProgressPrinter) print() {
	elapsed := time.Since(p.startTime)
	var timing string
	if p.duration > 0 {
		remaining := p.duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		// Round to the nearest second, e.g. 3.7s -> 4s
		timing = fmt.Sprintf("%ds left", int(remaining.Seconds()+0.5))
	} else {
		timing = fmt.Sprintf("%ds", int(elapsed.Seconds()))
	}
	fmt.Fprintf(p.w, "\r%s (%d found, %s)   ", p.prefix, p.found.Load(), timing)
}
