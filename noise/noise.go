// Package noise implements a seeded, table-driven 2D value noise with fractal
// (multi-octave) summation.
package noise

import (
	"math"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeInvalidOctaves     = "invalid-octaves"
	ErrTypeInvalidCoordinates = "invalid-coordinates"

	tableSize = 256
)

// Lattice values. Every entry is in [0, 255].
var hashTable = [tableSize]int{
	208, 34, 231, 213, 32, 248, 233, 56, 161, 78, 24, 140, 71, 48, 140, 254, 245, 255, 247,
	247, 40, 185, 248, 251, 245, 28, 124, 204, 204, 76, 36, 1, 107, 28, 234, 163, 202, 224,
	245, 128, 167, 204, 9, 92, 217, 54, 239, 174, 173, 102, 193, 189, 190, 121, 100, 108,
	167, 44, 43, 77, 180, 204, 8, 81, 70, 223, 11, 38, 24, 254, 210, 210, 177, 32, 81, 195,
	243, 125, 8, 169, 112, 32, 97, 53, 195, 13, 203, 9, 47, 104, 125, 117, 114, 124, 165,
	203, 181, 235, 193, 206, 70, 180, 174, 0, 167, 181, 41, 164, 30, 116, 127, 198, 245, 146,
	87, 224, 149, 206, 57, 4, 192, 210, 65, 210, 129, 240, 178, 105, 228, 108, 245, 148, 140,
	40, 35, 195, 38, 58, 65, 207, 215, 253, 65, 85, 208, 76, 62, 3, 237, 55, 89, 232, 50,
	217, 64, 244, 157, 199, 121, 252, 90, 17, 212, 203, 149, 152, 140, 187, 234, 177, 73,
	174, 193, 100, 192, 143, 97, 53, 145, 135, 19, 103, 13, 90, 135, 151, 199, 91, 239, 247,
	33, 39, 145, 101, 120, 99, 3, 186, 86, 99, 41, 237, 203, 111, 79, 220, 135, 158, 42, 30,
	154, 120, 67, 87, 167, 135, 176, 183, 191, 253, 115, 184, 21, 233, 58, 129, 233, 142, 39,
	128, 211, 118, 137, 139, 255, 114, 20, 218, 113, 154, 27, 127, 246, 250, 1, 8, 198, 250,
	209, 92, 222, 173, 21, 88, 102, 219,
}

// Generator evaluates noise for a given seed. The zero value uses seed 0.
type Generator struct {
	mutex sync.RWMutex
	seed  int
}

func NewGenerator(seed int) *Generator {
	return &Generator{seed: seed}
}

func (g *Generator) Seed() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.seed
}

func (g *Generator) SetSeed(seed int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.seed = seed
}

// Hash2 returns the lattice value of the integer coordinates (x, y).
func (g *Generator) Hash2(x, y int) int {
	return hash2(g.Seed(), x, y)
}

// Noise2D returns the smoothly interpolated lattice value at (x, y), in
// [0, 255].
func (g *Generator) Noise2D(x, y float32) float32 {
	return noise2D(g.Seed(), x, y)
}

// Perlin2D sums octaves layers of noise, starting at (x*frequency,
// y*frequency) with amplitude 1, each layer doubling the frequency and halving
// the amplitude. The sum is divided by 256 times the total amplitude, giving a
// value in [0, 1). Coordinates that are not finite at any octave are rejected.
func (g *Generator) Perlin2D(x, y, frequency float32, octaves int) (float32, error) {
	if octaves <= 0 {
		return 0, errors.New("octaves must be greater than zero").
			WithType(ErrTypeInvalidOctaves).
			WithTag("octaves", octaves)
	}

	seed := g.Seed()

	xa := x * frequency
	ya := y * frequency
	amp := (float32)(1)
	var fin, div float32

	for i := 0; i < octaves; i++ {
		if !isFinite(xa) || !isFinite(ya) {
			return 0, errors.New("noise coordinates are not finite").
				WithType(ErrTypeInvalidCoordinates).
				WithTag("x", x).
				WithTag("y", y).
				WithTag("frequency", frequency).
				WithTag("octave", i)
		}

		div += tableSize * amp
		fin += noise2D(seed, xa, ya) * amp
		amp /= 2
		xa *= 2
		ya *= 2
	}

	return fin / div, nil
}

func hash2(seed, x, y int) int {
	tmp := hashTable[wrap(y+seed)]
	return hashTable[wrap(tmp+x)]
}

func noise2D(seed int, x, y float32) float32 {
	xFloor := (float32)(math.Floor((float64)(x)))
	yFloor := (float32)(math.Floor((float64)(y)))
	xInt := (int)(xFloor)
	yInt := (int)(yFloor)
	xFrac := x - xFloor
	yFrac := y - yFloor

	s := (float32)(hash2(seed, xInt, yInt))
	t := (float32)(hash2(seed, xInt+1, yInt))
	u := (float32)(hash2(seed, xInt, yInt+1))
	v := (float32)(hash2(seed, xInt+1, yInt+1))

	low := smoothInter(s, t, xFrac)
	high := smoothInter(u, v, xFrac)
	return smoothInter(low, high, yFrac)
}

func isFinite(v float32) bool {
	f := (float64)(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func linInter(a, b, s float32) float32 {
	return a + s*(b-a)
}

func smoothInter(a, b, s float32) float32 {
	return linInter(a, b, s*s*(3-2*s))
}

// wrap maps any integer into [0, tableSize).
func wrap(v int) int {
	v %= tableSize
	if v < 0 {
		v += tableSize
	}
	return v
}
