package option

import (
	"github.com/bgrewell/isobuild/pkg/logging"
)

// OpenOptions control how an existing image is read back for verification.
type OpenOptions struct {
	StripVersionInfo bool
	ElToritoEnabled  bool
	Logger           *logging.Logger
}

type OpenOption func(*OpenOptions)

// ApplyOpen returns the default open options with opts applied in order.
func ApplyOpen(opts ...OpenOption) *OpenOptions {
	o := &OpenOptions{
		StripVersionInfo: true,
		ElToritoEnabled:  true,
		Logger:           logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

func WithStripVersionInfo(stripVersionInfo bool) OpenOption {
	return func(o *OpenOptions) {
		o.StripVersionInfo = stripVersionInfo
	}
}

func WithElToritoEnabled(elToritoEnabled bool) OpenOption {
	return func(o *OpenOptions) {
		o.ElToritoEnabled = elToritoEnabled
	}
}
