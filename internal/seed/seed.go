// Package seed derives independent, reproducible random streams from a
// compile-wide master seed and a key tuple.
package seed

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/piwi3910/tilegen/internal/model"
)

// Seeder hands out random sources keyed by name and values. Two calls with
// the same master seed and key always produce the same stream, regardless of
// how many other streams were drawn in between.
type Seeder struct {
	master string
}

// New creates a seeder for a master seed string.
func New(master string) *Seeder {
	return &Seeder{master: master}
}

// Master returns the master seed.
func (s *Seeder) Master() string {
	return s.master
}

// Rand returns a fresh source seeded from the master seed, name and values.
// Supported value types are string, int, float64, bool and fmt.Stringer;
// floats are rounded to 6 decimal places so tiny drift does not change
// the stream.
func (s *Seeder) Rand(name string, values ...any) *rand.Rand {
	d := xxhash.New()
	writeString(d, s.master)
	writeString(d, name)
	var buf [8]byte
	for _, val := range values {
		switch v := val.(type) {
		case string:
			writeString(d, v)
		case int:
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
			_, _ = d.Write(buf[:])
		case float64:
			writeFloat(d, v)
		case bool:
			b := byte(0)
			if v {
				b = 1
			}
			_, _ = d.Write([]byte{b})
		case model.Vec:
			writeFloat(d, v.X)
			writeFloat(d, v.Y)
			writeFloat(d, v.Z)
		case fmt.Stringer:
			writeString(d, v.String())
		default:
			panic(fmt.Sprintf("seed: unsupported key value %T", val))
		}
	}
	return rand.New(rand.NewSource(int64(d.Sum64())))
}

func writeString(d *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s)
}

func writeFloat(d *xxhash.Digest, f float64) {
	var buf [8]byte
	f = math.Round(f*1e6) / 1e6
	if f == 0 {
		f = 0 // fold -0
	}
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	_, _ = d.Write(buf[:])
}

// Triangular draws from a triangular distribution on [low, high] peaking at
// mode.
func Triangular(r *rand.Rand, low, high, mode float64) float64 {
	if high == low {
		return low
	}
	u := r.Float64()
	c := (mode - low) / (high - low)
	if u > c {
		u = 1 - u
		c = 1 - c
		low, high = high, low
	}
	return low + (high-low)*math.Sqrt(u*c)
}

// WeightedChoice picks an index with probability proportional to its weight.
// Non-positive weights are never picked. It returns -1 when every weight is
// non-positive.
func WeightedChoice(r *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	n := r.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}
