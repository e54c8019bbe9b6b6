package identity

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// gregorianOffset is the number of 100ns ticks between 1582-10-15 and the
// Unix epoch.
const gregorianOffset = 0x01B21DD213814000

// ticksPerMilli is the number of 100ns ticks in a millisecond.
const ticksPerMilli = 10000

// pcgIncrement is the second PCG seed word. It only has to be fixed.
const pcgIncrement = 0xda3e39cb94b95bdb

// Source reports where a generator's random stream was seeded from.
type Source int

const (
	// SourceSeed means an explicit WithSeed value.
	SourceSeed Source = iota
	// SourceEntropy means a strong random reader.
	SourceEntropy
	// SourceFallback means the strong reader failed and the seed was
	// derived from the clock and a pseudo-random draw.
	SourceFallback
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceSeed:
		return "seed"
	case SourceEntropy:
		return "entropy"
	default:
		return "fallback"
	}
}

// Option configures a Generator.
type Option func(*config)

type config struct {
	seed    *uint64
	entropy io.Reader
	clock   func() time.Time
}

// WithSeed seeds the random stream explicitly. Two generators with the same
// seed and clock produce the same identifiers.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = &seed
	}
}

// WithEntropy replaces crypto/rand as the strong seed source.
func WithEntropy(r io.Reader) Option {
	return func(c *config) {
		c.entropy = r
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// Generator produces time-ordered version 1 identifiers.
//
// The time field counts 100ns ticks since 1582-10-15 at millisecond
// resolution; identifiers made within the same millisecond are told apart
// by a sequence number added to the tick count. More than 10000 identifiers
// in one millisecond overflow into the ticks of the next millisecond and
// may collide with identifiers generated then.
//
// The clock sequence and node fields are drawn from a PCG stream for every
// identifier. The node always has its multicast and locally administered
// bits set, so it never resembles a hardware address.
//
// A Generator is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rng    *mrand.Rand
	clock  func() time.Time
	source Source
	lastMs int64
	seq    uint64
}

// NewGenerator creates a generator. Without WithSeed it seeds itself from
// the entropy reader and, if that fails, from the clock.
func NewGenerator(opts ...Option) *Generator {
	cfg := config{
		entropy: rand.Reader,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	seed, source := resolveSeed(cfg)
	return &Generator{
		rng:    mrand.New(mrand.NewPCG(seed, pcgIncrement)),
		clock:  cfg.clock,
		source: source,
		lastMs: -1,
	}
}

func resolveSeed(cfg config) (uint64, Source) {
	if cfg.seed != nil {
		return *cfg.seed, SourceSeed
	}
	if cfg.entropy != nil {
		var buf [8]byte
		if _, err := io.ReadFull(cfg.entropy, buf[:]); err == nil {
			return binary.BigEndian.Uint64(buf[:]), SourceEntropy
		}
	}
	return uint64(cfg.clock().UnixNano()) ^ mrand.Uint64(), SourceFallback
}

// Source reports how the generator was seeded.
func (g *Generator) Source() Source {
	return g.source
}

// NewUUID returns the next identifier.
func (g *Generator) NewUUID() uuid.UUID {
	g.mu.Lock()
	ms := g.clock().UnixMilli()
	if ms == g.lastMs {
		g.seq++
	} else {
		g.lastMs = ms
		g.seq = 0
	}
	ticks := uint64(ms)*ticksPerMilli + gregorianOffset + g.seq
	clockSeq := uint16(g.rng.Uint32())
	node := g.rng.Uint64()
	g.mu.Unlock()

	return layout(ticks, clockSeq, node)
}

// New returns the next identifier in canonical text form.
func (g *Generator) New() string {
	return g.NewUUID().String()
}

// layout places the fields in RFC 4122 order and applies the fixed bits.
func layout(ticks uint64, clockSeq uint16, node uint64) uuid.UUID {
	var u uuid.UUID

	binary.BigEndian.PutUint32(u[0:4], uint32(ticks))
	binary.BigEndian.PutUint16(u[4:6], uint16(ticks>>32))
	binary.BigEndian.PutUint16(u[6:8], uint16(ticks>>48))
	binary.BigEndian.PutUint16(u[8:10], clockSeq)

	var nodeBytes [8]byte
	binary.BigEndian.PutUint64(nodeBytes[:], node)
	copy(u[10:16], nodeBytes[2:])
	u[10] |= 0x03

	u[6] = u[6]&0x0f | 0x10 // version 1
	u[8] = u[8]&0x3f | 0x80 // RFC 4122 variant
	return u
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// New returns an identifier from the process-wide generator.
func New() string {
	return Default().New()
}

// NewUUID returns an identifier from the process-wide generator.
func NewUUID() uuid.UUID {
	return Default().NewUUID()
}
