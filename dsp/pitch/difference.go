package pitch

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const fftRoundOffFloor = 1e-11

// DifferenceDirect computes the YIN squared-difference function
//
//	d(τ) = Σ_{i=0}^{N-τ-1} (x[i] - x[i+τ])²
//
// for τ in [0, len(dst)). len(dst) must not exceed len(x).
func DifferenceDirect(dst, x []float64) {
	n := len(x)
	for tau := range dst {
		sum := 0.0
		for i := 0; i < n-tau; i++ {
			delta := x[i] - x[i+tau]
			sum += delta * delta
		}
		dst[tau] = sum
	}
}

// FFTDifference computes the same function as DifferenceDirect in
// O(N log N) by expanding the square into two energy terms and an
// autocorrelation obtained from the power spectrum.
//
// An FFTDifference is bound to one window length and is not safe for
// concurrent use.
type FFTDifference struct {
	n    int
	size int
	plan *algofft.Plan[complex128]

	timeBuf []complex128
	specBuf []complex128
	re      []float64
	im      []float64
	power   []float64
	squares []float64
	prefix  []float64
}

// NewFFTDifference prepares an FFT plan for windows of n samples.
func NewFFTDifference(n int) (*FFTDifference, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pitch: window length must be > 0: %d", n)
	}

	size := nextPowerOf2(2 * n)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("pitch: failed to create FFT plan: %w", err)
	}

	return &FFTDifference{
		n:       n,
		size:    size,
		plan:    plan,
		timeBuf: make([]complex128, size),
		specBuf: make([]complex128, size),
		re:      make([]float64, size),
		im:      make([]float64, size),
		power:   make([]float64, size),
		squares: make([]float64, n),
		prefix:  make([]float64, n+1),
	}, nil
}

// Len returns the window length the plan was built for.
func (f *FFTDifference) Len() int { return f.n }

// Compute fills dst with d(τ) for τ in [0, len(dst)). x must have exactly
// Len() samples and len(dst) must not exceed it.
func (f *FFTDifference) Compute(dst, x []float64) error {
	if len(x) != f.n {
		return fmt.Errorf("pitch: window length mismatch: got %d, want %d", len(x), f.n)
	}
	if len(dst) > f.n {
		return fmt.Errorf("pitch: too many lags: %d > %d", len(dst), f.n)
	}

	n := f.n

	// Energy prefix sums: prefix[k] = Σ_{i<k} x[i]².
	vecmath.MulBlock(f.squares, x, x)
	f.prefix[0] = 0
	for i, v := range f.squares {
		f.prefix[i+1] = f.prefix[i] + v
	}

	// Linear autocorrelation via zero-padded FFT.
	for i := range f.timeBuf {
		if i < n {
			f.timeBuf[i] = complex(x[i], 0)
		} else {
			f.timeBuf[i] = 0
		}
	}
	if err := f.plan.Forward(f.specBuf, f.timeBuf); err != nil {
		return fmt.Errorf("pitch: forward FFT failed: %w", err)
	}
	for k, c := range f.specBuf {
		f.re[k] = real(c)
		f.im[k] = imag(c)
	}
	vecmath.Power(f.power, f.re, f.im)
	for k, p := range f.power {
		f.specBuf[k] = complex(p, 0)
	}
	if err := f.plan.Inverse(f.timeBuf, f.specBuf); err != nil {
		return fmt.Errorf("pitch: inverse FFT failed: %w", err)
	}

	// Round-off below the floor is flushed so that exactly periodic or
	// constant input keeps the exact zeros of the direct sum.
	total := f.prefix[n]
	floor := fftRoundOffFloor * total
	for tau := range dst {
		r := real(f.timeBuf[tau])
		d := f.prefix[n-tau] + (total - f.prefix[tau]) - 2*r
		if d <= floor {
			d = 0
		}
		dst[tau] = d
	}
	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
