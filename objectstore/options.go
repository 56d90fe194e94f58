package objectstore

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type options struct {
	sweepOnOpen   bool
	driver        Driver
	codec         Codec
	clock         clockwork.Clock
	log           zerolog.Logger
	observer      Observer
	defaultExpiry Expiry
}

func defaultOptions() options {
	return options{
		sweepOnOpen:   true,
		driver:        SQLiteDriver{},
		codec:         JSONCodec{},
		clock:         clockwork.NewRealClock(),
		log:           zerolog.Nop(),
		observer:      nopObserver{},
		defaultExpiry: DefaultExpiry,
	}
}

// Option configures a Store at Open time
type Option func(*options)

// WithSweepOnOpen controls whether stale records are removed while opening
// (default true).
func WithSweepOnOpen(sweep bool) Option {
	return func(o *options) { o.sweepOnOpen = sweep }
}

// WithDriver replaces the connection driver.
func WithDriver(d Driver) Option {
	return func(o *options) {
		if d != nil {
			o.driver = d
		}
	}
}

// WithCodec replaces the value codec (default JSONCodec).
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithClock sets the clock used to resolve expiries and sweep.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger; stores are silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver sets the per-operation observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithDefaultExpiry sets the expiry Set applies when given a zero Expiry.
func WithDefaultExpiry(e Expiry) Option {
	return func(o *options) {
		if !e.IsZero() {
			o.defaultExpiry = e
		}
	}
}
