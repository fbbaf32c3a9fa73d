// Package deeplink implements the "smart" app link: try to open the native
// app through its custom URL scheme and, if nothing suggests the app took
// over within a short window, send the visitor to the right app store.
//
// An Attempt is a small state machine owned by exactly one invocation.
// Visibility signals (page hidden, window blur, pagehide) are the only
// evidence that the app opened; the first one wins and disarms the rest.
package deeplink

import (
	"context"
	"time"

	"github.com/snaportho/snaportho-web/internal/platform"
)

// Defaults used when Options leaves them zero.
const (
	DefaultTimeout    = 1200 * time.Millisecond
	DefaultMinElapsed = 600 * time.Millisecond
)

// State is the attempt's position in its lifecycle.
type State int

const (
	Idle State = iota
	Attempting
	Suppressed
	Redirected
	Aborted
	AssumedOpened
	Cancelled
)

var stateNames = [...]string{
	Idle:          "idle",
	Attempting:    "attempting",
	Suppressed:    "suppressed",
	Redirected:    "redirected",
	Aborted:       "aborted",
	AssumedOpened: "assumed_opened",
	Cancelled:     "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case Redirected, Aborted, AssumedOpened, Cancelled:
		return true
	}
	return false
}

// Signal is a browser event suggesting the page lost focus to the app.
type Signal string

const (
	SignalHidden   Signal = "hidden"
	SignalBlur     Signal = "blur"
	SignalPageHide Signal = "pagehide"
)

// Navigator performs a top-level navigation to url.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

// Navigate calls f(url).
func (f NavigatorFunc) Navigate(url string) { f(url) }

// Stores is the destination table for the fallback redirect.
type Stores struct {
	AppleStore string
	PlayStore  string
	Landing    string // desktop destination
}

// Options configure one Attempt.
type Options struct {
	Target     string // custom-scheme URI, e.g. snaportho://cases/hip
	Fallback   string // optional explicit fallback; overrides the store on mobile
	Platform   platform.Tag
	Timeout    time.Duration
	MinElapsed time.Duration
	Stores     Stores
	Navigator  Navigator

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Attempt is one app-open try. It is not safe for concurrent use; Run
// confines it to a single goroutine.
type Attempt struct {
	opts      Options
	state     State
	startedAt time.Time
	didHide   bool
	armed     bool
	dest      string
}

// New returns an Idle attempt with defaults applied.
func New(opts Options) *Attempt {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MinElapsed <= 0 {
		opts.MinElapsed = DefaultMinElapsed
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func(string) {})
	}
	return &Attempt{opts: opts}
}

// State returns the current state.
func (a *Attempt) State() State { return a.state }

// DidHide reports whether a visibility signal was observed.
func (a *Attempt) DidHide() bool { return a.didHide }

// Destination is the URL of the fallback navigation, or "" if none happened.
func (a *Attempt) Destination() string { return a.dest }

// Timeout is the effective fallback window.
func (a *Attempt) Timeout() time.Duration { return a.opts.Timeout }

// MinElapsed is the effective early-timer guard.
func (a *Attempt) MinElapsed() time.Duration { return a.opts.MinElapsed }

// StoreURL resolves where a failed attempt should send the visitor.
func (a *Attempt) StoreURL() string {
	return ResolveFallback(a.opts.Platform, a.opts.Fallback, a.opts.Stores)
}

// ResolveFallback picks the fallback destination for a platform. Desktop
// always lands on the landing page; mobile prefers an explicit fallback, then
// the platform's store.
func ResolveFallback(p platform.Tag, explicit string, s Stores) string {
	switch p {
	case platform.Android:
		if explicit != "" {
			return explicit
		}
		return s.PlayStore
	case platform.AppleMobile:
		if explicit != "" {
			return explicit
		}
		return s.AppleStore
	default:
		return s.Landing
	}
}

// Start begins the attempt. Desktop visitors go straight to the landing page
// without touching the custom scheme. Calling Start outside Idle is a no-op.
func (a *Attempt) Start() State {
	if a.state != Idle {
		return a.state
	}
	if !a.opts.Platform.IsMobile() {
		a.navigate(a.opts.Stores.Landing)
		a.state = Redirected
		return a.state
	}
	a.startedAt = a.opts.Now()
	a.armed = true
	a.state = Attempting
	a.opts.Navigator.Navigate(a.opts.Target)
	return a.state
}

// Signal records a visibility signal. Only the first one while Attempting
// counts; it disarms the listeners so later signals are ignored.
func (a *Attempt) Signal(Signal) State {
	if a.state != Attempting || !a.armed {
		return a.state
	}
	a.didHide = true
	a.armed = false
	a.state = Suppressed
	return a.state
}

// Expire is the fallback timer firing.
//
//   - Suppressed: the app most likely opened.
//   - Attempting, elapsed < MinElapsed: the timer fired implausibly early,
//     do nothing rather than risk a false redirect.
//   - Attempting otherwise: navigate once to the resolved fallback.
func (a *Attempt) Expire() State {
	switch a.state {
	case Suppressed:
		a.state = AssumedOpened
	case Attempting:
		a.armed = false
		if a.opts.Now().Sub(a.startedAt) < a.opts.MinElapsed {
			a.state = Aborted
			return a.state
		}
		a.navigate(a.StoreURL())
		a.state = Redirected
	}
	return a.state
}

// Cancel abandons the attempt (the page is unloading). No redirect can fire
// afterwards.
func (a *Attempt) Cancel() State {
	if a.state.Terminal() {
		return a.state
	}
	a.armed = false
	a.state = Cancelled
	return a.state
}

// Run drives one attempt end to end and returns its terminal state. signals
// may be nil. Cancelling ctx models the page unloading before the timer.
func (a *Attempt) Run(ctx context.Context, signals <-chan Signal) State {
	if st := a.Start(); st != Attempting {
		return st
	}

	timer := time.NewTimer(a.opts.Timeout)
	defer timer.Stop()

	sig := signals
	for {
		select {
		case s, ok := <-sig:
			if ok {
				a.Signal(s)
			}
			// Disarm: a nil channel is never selected again.
			sig = nil
		case <-timer.C:
			return a.Expire()
		case <-ctx.Done():
			return a.Cancel()
		}
	}
}

func (a *Attempt) navigate(url string) {
	a.dest = url
	a.opts.Navigator.Navigate(url)
}
