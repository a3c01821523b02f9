package noise

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestGeneratorSeed(t *testing.T) {
	var g Generator
	require.Zero(t, g.Seed())

	g.SetSeed(12)
	require.Equal(t, 12, g.Seed())
	require.Equal(t, 3, NewGenerator(3).Seed())
}

func TestHash2(t *testing.T) {
	t.Run("default seed", func(t *testing.T) {
		g := NewGenerator(0)
		require.Equal(t, hashTable[hashTable[0]], g.Hash2(0, 0))
		require.Equal(t, hashTable[(hashTable[7]+5)%256], g.Hash2(5, 7))
	})

	t.Run("seed offsets the row lookup", func(t *testing.T) {
		g := NewGenerator(1)
		require.Equal(t, hashTable[(hashTable[8]+5)%256], g.Hash2(5, 7))
	})

	t.Run("coordinates wrap around the table", func(t *testing.T) {
		g := NewGenerator(0)
		require.Equal(t, g.Hash2(5, 7), g.Hash2(5+256, 7+512))
		require.Equal(t, g.Hash2(255, 255), g.Hash2(-1, -1))
	})
}

func TestNoise2D(t *testing.T) {
	g := NewGenerator(0)

	t.Run("lattice points return the corner value", func(t *testing.T) {
		for _, p := range [][2]int{{0, 0}, {3, 5}, {-4, 2}, {200, 300}} {
			require.Equal(t, (float32)(g.Hash2(p[0], p[1])), g.Noise2D((float32)(p[0]), (float32)(p[1])))
		}
	})

	t.Run("half way blends the two corners evenly", func(t *testing.T) {
		expected := (float32)(g.Hash2(2, 7)+g.Hash2(3, 7)) / 2
		require.InDelta(t, expected, g.Noise2D(2.5, 7), 1e-4)
	})

	t.Run("bilinear smoothstep blend", func(t *testing.T) {
		x, y := (float32)(10.25), (float32)(-3.75)
		s := (float32)(g.Hash2(10, -4))
		tt := (float32)(g.Hash2(11, -4))
		u := (float32)(g.Hash2(10, -3))
		v := (float32)(g.Hash2(11, -3))

		sx := (float32)(0.25)
		sy := (float32)(0.25)
		wx := sx * sx * (3 - 2*sx)
		wy := sy * sy * (3 - 2*sy)
		low := s + wx*(tt-s)
		high := u + wx*(v-u)
		expected := low + wy*(high-low)

		require.InDelta(t, expected, g.Noise2D(x, y), 1e-3)
	})

	t.Run("stays in table range", func(t *testing.T) {
		for i := -50; i < 50; i++ {
			n := g.Noise2D((float32)(i)*0.37, (float32)(i)*-1.13)
			require.GreaterOrEqual(t, n, (float32)(0))
			require.LessOrEqual(t, n, (float32)(255))
		}
	})
}

func TestPerlin2D(t *testing.T) {
	g := NewGenerator(0)
	x, y, freq := (float32)(1.3), (float32)(4.7), (float32)(0.5)

	t.Run("single octave is the normalized base noise", func(t *testing.T) {
		v, err := g.Perlin2D(x, y, freq, 1)
		require.NoError(t, err)
		require.InDelta(t, g.Noise2D(x*freq, y*freq)/256, v, 1e-6)
	})

	t.Run("second octave adds a half amplitude layer at double frequency", func(t *testing.T) {
		n1 := g.Noise2D(x*freq, y*freq)
		n2 := g.Noise2D(x*freq*2, y*freq*2)

		v, err := g.Perlin2D(x, y, freq, 2)
		require.NoError(t, err)
		require.InDelta(t, (n1+n2*0.5)/(256+128), v, 1e-6)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := g.Perlin2D(12.34, -56.78, 0.1, 6)
		require.NoError(t, err)

		b, err := NewGenerator(0).Perlin2D(12.34, -56.78, 0.1, 6)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("seed changes the output", func(t *testing.T) {
		differs := false
		other := NewGenerator(99)
		for i := 0; i < 16 && !differs; i++ {
			a, _ := g.Perlin2D((float32)(i)+0.5, 0.5, 1, 3)
			b, _ := other.Perlin2D((float32)(i)+0.5, 0.5, 1, 3)
			differs = a != b
		}
		require.True(t, differs)
	})

	t.Run("output is normalized", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			v, err := g.Perlin2D((float32)(i)*0.71, (float32)(i)*0.29, 0.3, 4)
			require.NoError(t, err)
			require.GreaterOrEqual(t, v, (float32)(0))
			require.Less(t, v, (float32)(1))
		}
	})

	t.Run("invalid octaves", func(t *testing.T) {
		for _, octaves := range []int{0, -3} {
			v, err := g.Perlin2D(x, y, freq, octaves)
			require.Error(t, err)
			require.True(t, errors.IsType(err, ErrTypeInvalidOctaves))
			require.Zero(t, v)
		}
	})

	t.Run("non finite coordinates", func(t *testing.T) {
		nan := (float32)(math.NaN())
		inf := (float32)(math.Inf(1))

		tests := []struct {
			name       string
			x, y, freq float32
			octaves    int
		}{
			{name: "nan x", x: nan, y: 1, freq: 1, octaves: 1},
			{name: "infinite y", x: 1, y: -inf, freq: 1, octaves: 1},
			{name: "infinite frequency", x: 1, y: 1, freq: inf, octaves: 1},
			{name: "overflowing product", x: 1e38, y: 1, freq: 1e38, octaves: 1},
			{name: "overflowing octave", x: 3e38, y: 1, freq: 1, octaves: 2},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				v, err := g.Perlin2D(test.x, test.y, test.freq, test.octaves)
				require.Error(t, err)
				require.True(t, errors.IsType(err, ErrTypeInvalidCoordinates))
				require.Zero(t, v)
			})
		}
	})
}
