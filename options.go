package distcounter

import "go.uber.org/zap"

// An Option configures a Counter or a Local.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger makes the counter report shard registration and exchanges at
// debug level to l.
//
// It also changes how a closed counter with live shards is reported: the
// violation goes through l.DPanic, so it panics with a development logger and
// is logged at error level otherwise. Without a logger the counter always
// panics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
