package codec

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/options"
	"github.com/arloliu/rzap/node"
)

// Defaults of the decode guards.
const (
	DefaultMaxLength = math.MaxInt32
	DefaultMaxDepth  = 10000
)

// Record describes one node written by an encode call.
type Record struct {
	Index    int         // Index is the node's position in write order, starting at 0.
	Depth    int         // Depth is the nesting depth; the root has depth 0.
	Kind     format.Kind // Kind is the kind written, KindFactor for packed factors.
	Start    int         // Start is the body offset of the node's kind byte.
	End      int         // End is the body offset just past the node and its attributes.
	Opaque   bool        // Opaque reports the node went through the OpaqueCodec.
	HasAttrs bool        // HasAttrs reports an attributes block was written.
}

// Observer receives one Record per node, after the node is written.
type Observer func(Record)

// OpaqueCodec serializes nodes rzap has no encoding for.
type OpaqueCodec interface {
	// MarshalOpaque serializes n, attributes included, into a blob.
	MarshalOpaque(n node.Node) ([]byte, error)
	// UnmarshalOpaque rebuilds a node from a blob. The blob aliases the
	// stream and must be copied to be retained.
	UnmarshalOpaque(blob []byte) (node.Node, error)
}

// EnvResolver maps the name of a package environment, or the spec of a
// namespace environment, to an environment.
type EnvResolver func(typ node.EnvType, name node.Node) (*node.Environment, error)

// FactorDetector reports whether v is a factor and, if so, its number of
// levels.
type FactorDetector func(v *node.Integer) (int, bool)

// Config holds the settings of an Encoder or Decoder.
type Config struct {
	logical        format.LogicalEncoding
	integer        format.IntegerEncoding
	factor         format.FactorEncoding
	double         format.DoubleEncoding
	doubleFallback format.DoubleEncoding
	str            format.StringEncoding

	logicalThreshold int
	integerThreshold int
	factorThreshold  int
	doubleThreshold  int
	stringThreshold  int

	listRefs    bool
	compression format.CompressionType
	checksum    bool

	maxLength int
	maxDepth  int

	logger         *zap.Logger
	observer       Observer
	opaque         OpaqueCodec
	envResolver    EnvResolver
	factorDetector FactorDetector
}

// Option configures a Config.
type Option = options.Option[*Config]

// NewConfig creates a Config with the defaults and applies opts.
//
// Returns:
//   - *Config: The configuration
//   - error: errs.ErrInvalidConfig wrapped with the offending setting
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		logical:        format.LogicalPacked,
		integer:        format.IntegerDeltaFrame,
		factor:         format.FactorPacked,
		double:         format.DoubleALP,
		doubleFallback: format.DoubleDeltaShuffle,
		str:            format.StringMega,
		maxLength:      DefaultMaxLength,
		maxDepth:       DefaultMaxDepth,
		logger:         zap.NewNop(),
		opaque:         blobCodec{},
		factorDetector: node.FactorLevels,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func invalidConfig(msg string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), errs.ErrInvalidConfig)
}

func checkThreshold(name string, n int) error {
	if n < 0 {
		return invalidConfig("%s threshold %d is negative", name, n)
	}

	return nil
}

// WithLogicalEncoding sets the encoding of logical vectors.
func WithLogicalEncoding(enc format.LogicalEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.LogicalRaw, format.LogicalPacked:
			c.logical = enc
			return nil
		default:
			return invalidConfig("logical encoding %d", enc)
		}
	})
}

// WithIntegerEncoding sets the encoding of integer vectors.
func WithIntegerEncoding(enc format.IntegerEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.IntegerRaw, format.IntegerZigZag, format.IntegerDeltaFrame:
			c.integer = enc
			return nil
		default:
			return invalidConfig("integer encoding %d", enc)
		}
	})
}

// WithFactorEncoding sets the encoding of factors. FactorRaw writes factors
// as plain raw integer vectors.
func WithFactorEncoding(enc format.FactorEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.FactorRaw, format.FactorPacked:
			c.factor = enc
			return nil
		default:
			return invalidConfig("factor encoding %d", enc)
		}
	})
}

// WithDoubleEncoding sets the encoding of double and complex vectors.
func WithDoubleEncoding(enc format.DoubleEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.DoubleRaw, format.DoubleShuffle, format.DoubleDeltaShuffle, format.DoubleALP:
			c.double = enc
			return nil
		default:
			return invalidConfig("double encoding %d", enc)
		}
	})
}

// WithDoubleFallback sets the encoding used when ALP rejects a vector. It
// cannot be ALP itself.
func WithDoubleFallback(enc format.DoubleEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.DoubleRaw, format.DoubleShuffle, format.DoubleDeltaShuffle:
			c.doubleFallback = enc
			return nil
		default:
			return invalidConfig("double fallback %s", enc)
		}
	})
}

// WithStringEncoding sets the encoding of string vectors.
func WithStringEncoding(enc format.StringEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.StringRaw, format.StringMega:
			c.str = enc
			return nil
		default:
			return invalidConfig("string encoding %d", enc)
		}
	})
}

// WithLogicalThreshold writes logical vectors shorter than n raw.
func WithLogicalThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if err := checkThreshold("logical", n); err != nil {
			return err
		}
		c.logicalThreshold = n

		return nil
	})
}

// WithIntegerThreshold writes integer vectors shorter than n raw.
func WithIntegerThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if err := checkThreshold("integer", n); err != nil {
			return err
		}
		c.integerThreshold = n

		return nil
	})
}

// WithFactorThreshold writes factors shorter than n as raw integers.
func WithFactorThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if err := checkThreshold("factor", n); err != nil {
			return err
		}
		c.factorThreshold = n

		return nil
	})
}

// WithDoubleThreshold writes double and complex vectors shorter than n raw.
// Complex vectors are measured in doubles, two per element.
func WithDoubleThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if err := checkThreshold("double", n); err != nil {
			return err
		}
		c.doubleThreshold = n

		return nil
	})
}

// WithStringThreshold writes string vectors shorter than n raw.
func WithStringThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if err := checkThreshold("string", n); err != nil {
			return err
		}
		c.stringThreshold = n

		return nil
	})
}

// WithoutTransforms writes every vector in its raw encoding.
func WithoutTransforms() Option {
	return options.NoError(func(c *Config) {
		c.logical = format.LogicalRaw
		c.integer = format.IntegerRaw
		c.factor = format.FactorRaw
		c.double = format.DoubleRaw
		c.str = format.StringRaw
	})
}

// WithListReferences writes a list reached more than once as a
// back-reference to its first occurrence. Decoding follows the stream's
// header, not this option.
func WithListReferences(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.listRefs = enabled
	})
}

// WithCompression compresses the stream body.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch ct {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = ct
			return nil
		default:
			return invalidConfig("compression %s", ct)
		}
	})
}

// WithChecksum appends an xxHash64 of the stored body to the stream.
func WithChecksum(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.checksum = enabled
	})
}

// WithMaxLength caps the element count of any vector read by a Decoder.
func WithMaxLength(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return invalidConfig("max length %d", n)
		}
		c.maxLength = n

		return nil
	})
}

// WithMaxDepth caps node nesting, in both directions. Encoding a list that
// contains itself without list references fails on this limit.
func WithMaxDepth(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return invalidConfig("max depth %d", n)
		}
		c.maxDepth = n

		return nil
	})
}

// WithLogger sets the logger. nil restores the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithObserver registers fn to receive a Record for every node encoded.
func WithObserver(fn Observer) Option {
	return options.NoError(func(c *Config) {
		c.observer = fn
	})
}

// WithOpaqueCodec sets the codec for nodes without a native encoding. The
// default only handles *node.Opaque.
func WithOpaqueCodec(oc OpaqueCodec) Option {
	return options.New(func(c *Config) error {
		if oc == nil {
			return invalidConfig("nil opaque codec")
		}
		c.opaque = oc

		return nil
	})
}

// WithEnvResolver sets how a Decoder resolves package and namespace
// environments. The default creates one placeholder environment per name
// per call.
func WithEnvResolver(fn EnvResolver) Option {
	return options.NoError(func(c *Config) {
		c.envResolver = fn
	})
}

// WithFactorDetector sets how an Encoder recognizes factors. The default is
// node.FactorLevels.
func WithFactorDetector(fn FactorDetector) Option {
	return options.New(func(c *Config) error {
		if fn == nil {
			return invalidConfig("nil factor detector")
		}
		c.factorDetector = fn

		return nil
	})
}
