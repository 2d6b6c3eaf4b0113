// Package analysis post-processes recorded metric series, mainly to
// pull oscillation frequencies out of contact and vibration runs.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum computes the one-sided power spectrum of a uniformly
// sampled series. The mean is removed and the series zero-padded to a
// power of two before the transform. Frequencies run from zero to the
// Nyquist rate of the sampling interval dt.
func Spectrum(samples []float64, dt float64) (freqs, power []float64) {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return nil, nil
	}
	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	padded := make([]float64, nextPow2(n))
	for i, s := range samples {
		padded[i] = s - mean
	}

	coeffs := fft.FFTReal(padded)
	m := len(padded)/2 + 1
	df := 1 / (float64(len(padded)) * dt)
	norm := float64(len(padded))

	freqs = make([]float64, m)
	power = make([]float64, m)
	for k := 0; k < m; k++ {
		freqs[k] = float64(k) * df
		a := cmplx.Abs(coeffs[k]) / norm
		power[k] = a * a
	}
	return freqs, power
}

// Dominant returns the frequency with the highest power, skipping the
// zero bin.
func Dominant(freqs, power []float64) (float64, float64) {
	bestF, bestP := 0.0, 0.0
	for k := 1; k < len(power); k++ {
		if power[k] > bestP {
			bestF, bestP = freqs[k], power[k]
		}
	}
	return bestF, bestP
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
