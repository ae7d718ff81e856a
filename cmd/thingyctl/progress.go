package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// progressPrinter shows a one-line countdown while a scan runs. Single-use:
// Start once, Stop once; Stop is safe to call from the phase callback and
// from a defer at the same time.
type progressPrinter struct {
	prefix   string
	duration time.Duration
	phase    atomic.Value // string

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func newProgressPrinter(prefix string, duration time.Duration) *progressPrinter {
	p := &progressPrinter{
		prefix:   prefix,
		duration: duration,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.phase.Store("Scanning")
	return p
}

// Start begins updating the progress line in the background.
func (p *progressPrinter) Start() {
	start := time.Now()
	fmt.Printf("\r%s (%s...)   ", p.prefix, p.phase.Load())

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(progressUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				remaining := p.duration - time.Since(start)
				if p.duration > 0 && remaining > 0 {
					fmt.Printf("\r%s (%s %ds)   ", p.prefix, p.phase.Load(), int(remaining.Seconds()+0.5))
				} else {
					fmt.Printf("\r%s (%s...)   ", p.prefix, p.phase.Load())
				}
			}
		}
	}()
}

// Callback returns a phase-change callback for the scanner. The final
// "Processing results" phase stops the printer.
func (p *progressPrinter) Callback() func(phase string) {
	return func(phase string) {
		p.phase.Store(phase)
		if phase == "Processing results" {
			p.Stop()
		}
	}
}

// Stop halts updates and clears the progress line. Idempotent.
func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		<-p.done
		fmt.Print(clearLineSequence)
	})
}
