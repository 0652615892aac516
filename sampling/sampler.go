package sampling

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/zq"
)

// Sampler draws values for one parameter set from a Source.
//
// A Sampler buffers its source and is not safe for concurrent use. Use one per
// goroutine; NewWorkerSources provides independent streams for that.
type Sampler struct {
	q         int
	sigma     float64
	threshold uint32
	rd        *bufio.Reader
	buf       [8]byte
}

// NewSampler binds a sampler to params.Q, params.Sigma and src. A nil src means the
// system source.
func NewSampler(params lwe.Params, src Source) (*Sampler, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewSource()
	}
	q := uint32(params.Q)
	return &Sampler{
		q:         params.Q,
		sigma:     params.Sigma,
		threshold: math.MaxUint32 - (math.MaxUint32 % q),
		rd:        bufio.NewReaderSize(src, 4096),
	}, nil
}

// Q returns the modulus the sampler reduces into.
func (s *Sampler) Q() int { return s.q }

// Sigma returns the noise standard deviation.
func (s *Sampler) Sigma() float64 { return s.sigma }

// Matches reports whether the sampler was built for params.
func (s *Sampler) Matches(params lwe.Params) bool {
	return s.q == params.Q && s.sigma == params.Sigma
}

func (s *Sampler) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(s.rd, s.buf[:n]); err != nil {
		return nil, fmt.Errorf("%w: %v", lwe.ErrRandomnessUnavailable, err)
	}
	return s.buf[:n], nil
}

// Uint32 returns 32 uniformly random bits.
func (s *Sampler) Uint32() (uint32, error) {
	b, err := s.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 returns 64 uniformly random bits.
func (s *Sampler) Uint64() (uint64, error) {
	b, err := s.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Uniform returns an unbiased element of [0, q), rejecting 32-bit words at or above
// the largest multiple of q.
func (s *Sampler) Uniform() (int32, error) {
	for {
		v, err := s.Uint32()
		if err != nil {
			return 0, err
		}
		if v < s.threshold {
			return int32(v % uint32(s.q)), nil
		}
	}
}

// UniformVector returns n independent uniform elements of [0, q).
func (s *Sampler) UniformVector(n int) (lwe.Vector, error) {
	v := lwe.NewVector(n)
	for i := range v {
		x, err := s.Uniform()
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}

// UniformMatrix returns a rows x cols matrix of independent uniform elements.
func (s *Sampler) UniformMatrix(rows, cols int) (lwe.Matrix, error) {
	m := lwe.NewMatrix(rows, cols)
	for i := range m.Data {
		x, err := s.Uniform()
		if err != nil {
			return lwe.Matrix{}, err
		}
		m.Data[i] = x
	}
	return m, nil
}

// Bit returns 0 or 1 with equal probability.
func (s *Sampler) Bit() (int32, error) {
	b, err := s.fill(1)
	if err != nil {
		return 0, err
	}
	return int32(b[0] & 1), nil
}

// BinaryVector returns n independent uniform bits.
func (s *Sampler) BinaryVector(n int) (lwe.Vector, error) {
	v := lwe.NewVector(n)
	for i := 0; i < n; i += 8 {
		b, err := s.fill(1)
		if err != nil {
			return nil, err
		}
		for j := 0; j < 8 && i+j < n; j++ {
			v[i+j] = int32((b[0] >> j) & 1)
		}
	}
	return v, nil
}

// Float64Open returns a uniform float in (0, 1) with 53 bits of precision.
// An exact zero is redrawn so the result is always safe to pass to math.Log.
func (s *Sampler) Float64Open() (float64, error) {
	for {
		x, err := s.Uint64()
		if err != nil {
			return 0, err
		}
		u := float64(x>>11) / (1 << 53)
		if u > 0 {
			return u, nil
		}
	}
}

// Normal returns a standard normal deviate using the Box-Muller transform.
// It uses floating point and is not constant time.
func (s *Sampler) Normal() (float64, error) {
	u, err := s.Float64Open()
	if err != nil {
		return 0, err
	}
	v, err := s.Float64Open()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v), nil
}

// Noise returns round(sigma * z) for a standard normal z, as a signed integer.
func (s *Sampler) Noise() (int64, error) {
	z, err := s.Normal()
	if err != nil {
		return 0, err
	}
	return int64(math.Round(s.sigma * z)), nil
}

// Gaussian returns a noise sample reduced into [0, q).
func (s *Sampler) Gaussian() (int32, error) {
	e, err := s.Noise()
	if err != nil {
		return 0, err
	}
	return zq.Reduce(e, s.q), nil
}

// GaussianVector returns n independent noise samples reduced into [0, q).
func (s *Sampler) GaussianVector(n int) (lwe.Vector, error) {
	v := lwe.NewVector(n)
	for i := range v {
		x, err := s.Gaussian()
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}
