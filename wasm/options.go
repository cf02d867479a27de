package wasm

import "go.uber.org/zap"

// BinaryOption configures EncodeBinary.
type BinaryOption func(*binaryConfig)

type binaryConfig struct {
	logger   *zap.Logger
	validate bool
}

func newBinaryConfig(opts []BinaryOption) *binaryConfig {
	cfg := &binaryConfig{validate: true}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = logOrNop(cfg.logger)
	return cfg
}

// WithLogger attaches a structured logger that receives one debug entry
// after encoding (total byte count, type count and function count).
// A nil logger is equivalent to not passing this option.
func WithLogger(logger *zap.Logger) BinaryOption {
	return func(c *binaryConfig) { c.logger = logger }
}

// WithValidate controls whether EncodeBinary validates the module before
// encoding it. Defaults to true; pass false to skip validation when the
// caller has already validated the module by other means.
func WithValidate(validate bool) BinaryOption {
	return func(c *binaryConfig) { c.validate = validate }
}

// TextOption configures EncodeText.
type TextOption func(*textConfig)

type textConfig struct {
	logger   *zap.Logger
	validate bool
	indent   string
}

func newTextConfig(opts []TextOption) *textConfig {
	cfg := &textConfig{validate: true, indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = logOrNop(cfg.logger)
	return cfg
}

// WithTextLogger attaches a structured logger to EncodeText.
func WithTextLogger(logger *zap.Logger) TextOption {
	return func(c *textConfig) { c.logger = logger }
}

// WithTextValidate controls whether EncodeText validates the module before
// rendering it. Defaults to true.
func WithTextValidate(validate bool) TextOption {
	return func(c *textConfig) { c.validate = validate }
}

// WithIndent overrides the two-space default indentation unit.
func WithIndent(indent string) TextOption {
	return func(c *textConfig) { c.indent = indent }
}
