package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/engine"
	"github.com/BackendStack21/lwe-go/keygen"
	"github.com/BackendStack21/lwe-go/sampling"
	"github.com/BackendStack21/lwe-go/zq"
)

// Mode selects the key-management mode.
type Mode string

const (
	Asymmetric Mode = "asymmetric"
	Symmetric  Mode = "symmetric"
)

// ParseMode accepts the long names and the short forms "asym" and "sym".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "asymmetric", "asym", "pke":
		return Asymmetric, nil
	case "symmetric", "sym", "ske":
		return Symmetric, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", lwe.ErrInvalidParameter, s)
}

// TrialConfig describes a batch of independent keygen, encrypt and decrypt runs.
type TrialConfig struct {
	Params  lwe.Params
	Mode    Mode
	Bit     int
	Count   int
	Workers int    // <= 0 uses GOMAXPROCS
	Seed    []byte // optional master key, makes the batch reproducible
}

// TrialReport summarizes a batch. Noise figures are the centred phase minus the
// encoded bit, in units of Z_q.
type TrialReport struct {
	Params          lwe.Params `json:"params"`
	Mode            Mode       `json:"mode"`
	Bit             int        `json:"bit"`
	Count           int        `json:"count"`
	Mismatches      int        `json:"mismatches"`
	MismatchRate    float64    `json:"mismatch_rate"`
	NoiseMean       float64    `json:"noise_mean"`
	NoiseStdDev     float64    `json:"noise_stddev"`
	NoiseMaxAbs     float64    `json:"noise_max_abs"`
	NoiseP99        float64    `json:"noise_p99_abs"`
	PredictedStdDev float64    `json:"predicted_stddev"`
	Threshold       float64    `json:"threshold"`
	Log2Bound       float64    `json:"log2_failure_bound"`
}

type trialResult struct {
	noise int32
	ok    bool
}

func runOne(cfg TrialConfig, s *sampling.Sampler) (trialResult, error) {
	params := cfg.Params
	var (
		secret lwe.Vector
		ct     *lwe.Ciphertext
	)
	switch cfg.Mode {
	case Asymmetric:
		kp, err := keygen.GenerateKeyPair(params, s)
		if err != nil {
			return trialResult{}, err
		}
		if ct, err = engine.EncryptPublic(&kp.PublicKey, cfg.Bit, s); err != nil {
			return trialResult{}, err
		}
		secret = kp.SecretKey.S
	case Symmetric:
		key, err := keygen.GenerateSharedKey(params, s)
		if err != nil {
			return trialResult{}, err
		}
		sct, err := engine.EncryptShared(key, cfg.Bit, s)
		if err != nil {
			return trialResult{}, err
		}
		ct, secret = &sct.Ciphertext, key.S
	default:
		return trialResult{}, fmt.Errorf("%w: unknown mode %q", lwe.ErrInvalidParameter, cfg.Mode)
	}

	phase, err := engine.Phase(params, secret, ct)
	if err != nil {
		return trialResult{}, err
	}
	shifted := zq.Reduce(int64(phase)-int64(cfg.Bit)*int64(params.HalfQ()), params.Q)
	return trialResult{
		noise: zq.Center(shifted, params.Q),
		ok:    engine.DecodeBit(phase, params.Q) == cfg.Bit,
	}, nil
}

// RunTrials executes cfg.Count independent trials and reports mismatches and noise
// statistics next to the analytic prediction.
func RunTrials(cfg TrialConfig) (*TrialReport, error) {
	if err := core.ValidateParams(cfg.Params); err != nil {
		return nil, err
	}
	if err := engine.ValidateBit(cfg.Bit); err != nil {
		return nil, err
	}
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("%w: trial count must be positive", lwe.ErrInvalidParameter)
	}
	if cfg.Mode != Asymmetric && cfg.Mode != Symmetric {
		return nil, fmt.Errorf("%w: unknown mode %q", lwe.ErrInvalidParameter, cfg.Mode)
	}

	results := make([]trialResult, cfg.Count)
	err := engine.Parallel(cfg.Count, cfg.Workers, cfg.Params, cfg.Seed, func(i int, s *sampling.Sampler) error {
		r, err := runOne(cfg, s)
		results[i] = r
		return err
	})
	if err != nil {
		return nil, err
	}

	noise := make([]float64, cfg.Count)
	absNoise := make([]float64, cfg.Count)
	mismatches := 0
	for i, r := range results {
		noise[i] = float64(r.noise)
		absNoise[i] = math.Abs(noise[i])
		if !r.ok {
			mismatches++
		}
	}

	report := &TrialReport{
		Params:          cfg.Params,
		Mode:            cfg.Mode,
		Bit:             cfg.Bit,
		Count:           cfg.Count,
		Mismatches:      mismatches,
		MismatchRate:    float64(mismatches) / float64(cfg.Count),
		PredictedStdDev: math.Sqrt(NoiseVariance(cfg.Params)),
		Threshold:       float64(cfg.Params.Q) / 4,
	}
	if report.NoiseMean, err = stats.Mean(noise); err != nil {
		return nil, err
	}
	if report.NoiseStdDev, err = stats.StandardDeviation(noise); err != nil {
		return nil, err
	}
	if report.NoiseMaxAbs, err = stats.Max(absNoise); err != nil {
		return nil, err
	}
	if report.NoiseP99, err = stats.Percentile(absNoise, 99); err != nil {
		return nil, err
	}
	if report.Log2Bound, err = Log2FailureBound(cfg.Params); err != nil {
		return nil, err
	}
	return report, nil
}
