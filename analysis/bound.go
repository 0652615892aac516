// Package analysis predicts and measures decryption failures.
//
// The decryption phase of a bit m is m·⌊q/2⌋ + r·e + e2 - e1·s. With r uniform binary
// and e, e1, e2, s drawn from the rounded Gaussian of variance Ve, the noise term has
// variance
//
//	V = (n/2)·Ve + Ve + n·Ve²
//
// and decryption fails only when it exceeds q/4 in absolute value.
package analysis

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"gonum.org/v1/gonum/stat/distuv"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
)

// boundPrec is the mantissa precision used for failure bounds.
const boundPrec = 128

// RoundedGaussianVariance returns the exact variance of round(sigma·Z) for a standard
// normal Z. It is close to sigma² + 1/12 once sigma is larger than about 1, and that
// closed form is used above sigma = 64.
func RoundedGaussianVariance(sigma float64) float64 {
	if !(sigma > 0) {
		return 0
	}
	if sigma > 64 {
		return sigma*sigma + 1.0/12
	}
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	limit := int(math.Ceil(14*sigma)) + 1

	var v float64
	for k := 1; k <= limit; k++ {
		x := float64(k)
		p := dist.CDF(x+0.5) - dist.CDF(x-0.5)
		v += 2 * x * x * p
	}
	return v
}

// NoiseVariance returns the variance of the decryption noise for params.
func NoiseVariance(params lwe.Params) float64 {
	ve := RoundedGaussianVariance(params.Sigma)
	n := float64(params.N)
	return n/2*ve + ve + n*ve*ve
}

// exponent returns (q/4)² / (2V), the tail exponent of the Gaussian bound.
func exponent(params lwe.Params) float64 {
	t := float64(params.Q) / 4
	return t * t / (2 * NoiseVariance(params))
}

// FailureBound returns the Chernoff-style bound 2·exp(-(q/4)²/(2V)) on the probability
// that one decryption is wrong, capped at 1. The value is usually far below the
// float64 range, so it is computed with big.Float.
func FailureBound(params lwe.Params) (*big.Float, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	z := new(big.Float).SetPrec(boundPrec).SetFloat64(-exponent(params))
	bound := bigfloat.Exp(z)
	bound.Mul(bound, big.NewFloat(2).SetPrec(boundPrec))
	if bound.Cmp(big.NewFloat(1)) > 0 {
		return big.NewFloat(1).SetPrec(boundPrec), nil
	}
	return bound, nil
}

// Log2FailureBound returns log2 of FailureBound, which stays representable as a float64.
func Log2FailureBound(params lwe.Params) (float64, error) {
	if err := core.ValidateParams(params); err != nil {
		return 0, err
	}
	l := 1 - exponent(params)/math.Ln2
	if l > 0 {
		return 0, nil
	}
	return l, nil
}

// FormatFailureBound renders FailureBound in decimal scientific notation, computed from
// Log2FailureBound. Decimal conversion of the big.Float does not finish in practical time
// for binary exponents near -1e8, as LWE-256 has.
func FormatFailureBound(params lwe.Params) (string, error) {
	l, err := Log2FailureBound(params)
	if err != nil {
		return "", err
	}
	l10 := l * math.Log10(2)
	exp := math.Floor(l10)
	mant := math.Pow(10, l10-exp)
	if mant >= 9.99995 {
		mant /= 10
		exp++
	}
	return fmt.Sprintf("%.4fe%d", mant, int64(exp)), nil
}
