// Package main provides the lwe-cli command line interface for lwe-go.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/analysis"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/pke"
	"github.com/BackendStack21/lwe-go/ske"
)

const (
	version = "1.0.0"
	appName = "lwe-cli"
)

// OutputFormat represents the output format for reports
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	Params       lwe.Params
	Mode         analysis.Mode
	Bit          int
	Seed         []byte
	Workers      int
	OutputFormat OutputFormat
	OutputFile   string
	Verbose      bool
	Timing       bool
}

// ParamsExport describes one parameter set and its predicted failure rate
type ParamsExport struct {
	Name            lwe.ParamSet `json:"name"`
	N               int          `json:"n"`
	Q               int          `json:"q"`
	Sigma           float64      `json:"sigma"`
	NoiseStdDev     float64      `json:"noise_stddev"`
	Threshold       float64      `json:"threshold"`
	Log2FailureProb float64      `json:"log2_failure_bound"`
	FailureBound    string       `json:"failure_bound"`
}

// DemoExport represents one keygen, encrypt and decrypt run
type DemoExport struct {
	Params      lwe.Params    `json:"params"`
	Mode        analysis.Mode `json:"mode"`
	Bit         int           `json:"bit"`
	Decrypted   int           `json:"decrypted"`
	Match       bool          `json:"match"`
	C1          []int32       `json:"c1"`
	C2          int32         `json:"c2"`
	Fingerprint string        `json:"public_key_fingerprint,omitempty"`
}

// MessageExport represents a byte message encrypted bit by bit
type MessageExport struct {
	Params      lwe.Params    `json:"params"`
	Mode        analysis.Mode `json:"mode"`
	Message     string        `json:"message"`
	Decrypted   string        `json:"decrypted"`
	Ciphertexts int           `json:"ciphertexts"`
	BitErrors   int           `json:"bit_errors"`
	Fingerprint string        `json:"key_fingerprint"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, stdout io.Writer) error {
	switch command {
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "%s version %s\n", appName, version)
		fmt.Fprintf(stdout, "lwe-go library version %s\n", lwe.Version)
		return nil
	case "params":
		return handleParams(args, stdout)
	case "demo":
		return handleDemo(args, stdout)
	case "message":
		return handleMessage(args, stdout)
	case "trial":
		return handleTrial(args, stdout)
	case "benchmark":
		return handleBenchmark(args, stdout)
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s - Learning With Errors bit encryption

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    params      Show parameter presets and their predicted failure bound
    demo        Generate a key, encrypt one bit and decrypt it
    message     Encrypt a text message bit by bit and decrypt it
    trial       Run many independent round trips and report noise statistics
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

OPTIONS:
    --params, -p <set>      LWE-TOY (toy) or LWE-256 (256)
    --n, --q, --sigma       Custom parameters, override the preset
    --mode, -m <mode>       asymmetric (asym) or symmetric (sym)
    --bit, -b <0|1>         Message bit (default 1)
    --count, -c <n>         Trials to run (default 1000)
    --iterations, -n <n>    Benchmark iterations (default 10)
    --workers, -w <n>       Worker goroutines (default GOMAXPROCS)
    --seed <hex>            32+ byte seed, makes keys reproducible (and demo randomness)
    --message <text>        Message for the message command
    --format, -f <fmt>      json or text (default json)
    --output, -o <file>     Write the report to file (mode 0600)
    --verbose               Verbose output on stderr
    --timing, -t            Print timings on stderr

EXAMPLES:
    %s demo --params toy --mode asym --bit 1
    %s demo --params 256 --mode sym --bit 0
    %s trial --params 256 --mode sym --count 1000 --output report.json
    %s benchmark --params 256 --iterations 20
`, appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Commands
// ============================================================================

func handleParams(args []string, stdout io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}

	sets := []lwe.Params{core.ToyParams, core.LWE256Params}
	if hasFlag(args, "--params", "-p") || hasFlag(args, "--n", "") || hasFlag(args, "--q", "") || hasFlag(args, "--sigma", "") {
		sets = []lwe.Params{config.Params}
	}

	exports := make([]ParamsExport, 0, len(sets))
	for _, p := range sets {
		bound, err := analysis.FormatFailureBound(p)
		if err != nil {
			return err
		}
		log2, err := analysis.Log2FailureBound(p)
		if err != nil {
			return err
		}
		exports = append(exports, ParamsExport{
			Name:            p.Name,
			N:               p.N,
			Q:               p.Q,
			Sigma:           p.Sigma,
			NoiseStdDev:     math.Sqrt(analysis.NoiseVariance(p)),
			Threshold:       float64(p.Q) / 4,
			Log2FailureProb: log2,
			FailureBound:    bound,
		})
	}

	if config.OutputFormat == FormatText {
		var sb strings.Builder
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tN\tQ\tSIGMA\tNOISE SD\tQ/4\tFAILURE BOUND")
		for _, e := range exports {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%.2f\t%.2f\t%s (2^%.1f)\n",
				e.Name, e.N, e.Q, e.Sigma, e.NoiseStdDev, e.Threshold, e.FailureBound, e.Log2FailureProb)
		}
		tw.Flush()
		return writeOutput([]byte(strings.TrimRight(sb.String(), "\n")), config.OutputFile, stdout)
	}
	return writeJSON(exports, config.OutputFile, stdout)
}

func handleDemo(args []string, stdout io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Parameters: %s n=%d q=%d sigma=%g\n",
			config.Params.Name, config.Params.N, config.Params.Q, config.Params.Sigma)
	}

	start := time.Now()
	export := DemoExport{Params: config.Params, Mode: config.Mode, Bit: config.Bit}

	switch config.Mode {
	case analysis.Asymmetric:
		var kp *lwe.KeyPair
		var ct *lwe.Ciphertext
		if config.Seed != nil {
			kp, err = pke.GenerateKeyPairFromSeed(config.Params, config.Seed)
			if err == nil {
				ct, err = pke.EncryptDeterministic(&kp.PublicKey, config.Bit, seedRandomness(config.Seed))
			}
		} else {
			kp, err = pke.GenerateKeyPairWithParams(config.Params)
			if err == nil {
				ct, err = pke.Encrypt(&kp.PublicKey, config.Bit)
			}
		}
		if err != nil {
			return err
		}
		if export.Decrypted, err = pke.Decrypt(&kp.SecretKey, ct); err != nil {
			return err
		}
		export.C1, export.C2 = ct.C1, ct.C2
		export.Fingerprint = hex.EncodeToString(kp.PublicKey.Fingerprint())

	case analysis.Symmetric:
		var key *lwe.SharedKey
		var ct *lwe.SymmetricCiphertext
		if config.Seed != nil {
			key, err = ske.GenerateKeyFromSeed(config.Params, config.Seed)
			if err == nil {
				ct, err = ske.EncryptDeterministic(key, config.Bit, seedRandomness(config.Seed))
			}
		} else {
			key, err = ske.GenerateKeyWithParams(config.Params)
			if err == nil {
				ct, err = ske.Encrypt(key, config.Bit)
			}
		}
		if err != nil {
			return err
		}
		if export.Decrypted, err = ske.Decrypt(key, ct); err != nil {
			return err
		}
		export.C1, export.C2 = ct.C1, ct.C2
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Round trip took: %v\n", time.Since(start))
	}
	export.Match = export.Decrypted == export.Bit
	return writeJSON(export, config.OutputFile, stdout)
}

func handleMessage(args []string, stdout io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	message := getArg(args, "--message", "")
	if message == "" {
		return fmt.Errorf("--message is required")
	}

	export := MessageExport{Params: config.Params, Mode: config.Mode, Message: message}
	var decrypted []byte
	start := time.Now()

	switch config.Mode {
	case analysis.Asymmetric:
		var kp *lwe.KeyPair
		if config.Seed != nil {
			kp, err = pke.GenerateKeyPairFromSeed(config.Params, config.Seed)
		} else {
			kp, err = pke.GenerateKeyPairWithParams(config.Params)
		}
		if err != nil {
			return err
		}
		export.Fingerprint = hex.EncodeToString(kp.PublicKey.Fingerprint())
		cts, err := pke.EncryptBytes(&kp.PublicKey, []byte(message))
		if err != nil {
			return err
		}
		export.Ciphertexts = len(cts)
		if decrypted, err = pke.DecryptBytes(&kp.SecretKey, cts); err != nil {
			return err
		}
	case analysis.Symmetric:
		var key *lwe.SharedKey
		if config.Seed != nil {
			key, err = ske.GenerateKeyFromSeed(config.Params, config.Seed)
		} else {
			key, err = ske.GenerateKeyWithParams(config.Params)
		}
		if err != nil {
			return err
		}
		export.Fingerprint = hex.EncodeToString(key.Fingerprint())
		cts, err := ske.EncryptBytes(key, []byte(message))
		if err != nil {
			return err
		}
		export.Ciphertexts = len(cts)
		if decrypted, err = ske.DecryptBytes(key, cts); err != nil {
			return err
		}
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Message round trip took: %v\n", time.Since(start))
	}
	export.Decrypted = string(decrypted)
	export.BitErrors = bitErrors([]byte(message), decrypted)
	return writeJSON(export, config.OutputFile, stdout)
}

func handleTrial(args []string, stdout io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	count, err := intArg(args, "--count", "-c", 1000)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := analysis.RunTrials(analysis.TrialConfig{
		Params:  config.Params,
		Mode:    config.Mode,
		Bit:     config.Bit,
		Count:   count,
		Workers: config.Workers,
		Seed:    config.Seed,
	})
	if err != nil {
		return err
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "%d trials took: %v\n", count, time.Since(start))
	}
	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Mismatches: %d/%d\n", report.Mismatches, report.Count)
	}

	if config.OutputFormat == FormatText {
		text := fmt.Sprintf("%s %s bit=%d trials=%d mismatches=%d (%.2f%%)\n"+
			"noise mean=%.3f sd=%.3f (predicted %.3f) p99=%.1f max=%.1f threshold=%.1f\n"+
			"log2 failure bound: %.1f",
			report.Params.Name, report.Mode, report.Bit, report.Count, report.Mismatches, 100*report.MismatchRate,
			report.NoiseMean, report.NoiseStdDev, report.PredictedStdDev, report.NoiseP99, report.NoiseMaxAbs,
			report.Threshold, report.Log2Bound)
		return writeOutput([]byte(text), config.OutputFile, stdout)
	}
	return writeJSON(report, config.OutputFile, stdout)
}

func handleBenchmark(args []string, stdout io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	iterations, err := intArg(args, "--iterations", "-n", 10)
	if err != nil {
		return err
	}
	if iterations < 1 {
		iterations = 1
	}

	fmt.Fprintf(stdout, "lwe-go Benchmark Results\n")
	fmt.Fprintf(stdout, "========================\n")
	fmt.Fprintf(stdout, "Parameters: %s (n=%d, q=%d, sigma=%g)\n", config.Params.Name, config.Params.N, config.Params.Q, config.Params.Sigma)
	fmt.Fprintf(stdout, "Iterations: %d\n\n", iterations)

	fmt.Fprintln(stdout, "Asymmetric")
	fmt.Fprintln(stdout, "----------")
	var kp *lwe.KeyPair
	keygenAvg, err := timeIt(iterations, func() (err error) {
		kp, err = pke.GenerateKeyPairWithParams(config.Params)
		return err
	})
	if err != nil {
		return err
	}
	var ct *lwe.Ciphertext
	encAvg, err := timeIt(iterations, func() (err error) {
		ct, err = pke.Encrypt(&kp.PublicKey, 1)
		return err
	})
	if err != nil {
		return err
	}
	decAvg, err := timeIt(iterations, func() error {
		_, err := pke.Decrypt(&kp.SecretKey, ct)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "  KeyGen:  %v (avg)\n", keygenAvg)
	fmt.Fprintf(stdout, "  Encrypt: %v (avg)\n", encAvg)
	fmt.Fprintf(stdout, "  Decrypt: %v (avg)\n\n", decAvg)

	fmt.Fprintln(stdout, "Symmetric")
	fmt.Fprintln(stdout, "---------")
	var key *lwe.SharedKey
	keygenAvg, err = timeIt(iterations, func() (err error) {
		key, err = ske.GenerateKeyWithParams(config.Params)
		return err
	})
	if err != nil {
		return err
	}
	var sct *lwe.SymmetricCiphertext
	encAvg, err = timeIt(iterations, func() (err error) {
		sct, err = ske.Encrypt(key, 1)
		return err
	})
	if err != nil {
		return err
	}
	decAvg, err = timeIt(iterations, func() error {
		_, err := ske.Decrypt(key, sct)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "  KeyGen:  %v (avg)\n", keygenAvg)
	fmt.Fprintf(stdout, "  Encrypt: %v (avg)\n", encAvg)
	fmt.Fprintf(stdout, "  Decrypt: %v (avg)\n\n", decAvg)

	fmt.Fprintln(stdout, "Benchmark complete!")
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func parseConfig(args []string) (CLIConfig, error) {
	config := CLIConfig{
		Params:       core.ToyParams,
		Mode:         analysis.Asymmetric,
		Bit:          1,
		OutputFormat: FormatJSON,
	}

	set := getArg(args, "--params", "-p")
	switch set {
	case "toy", "TOY", "LWE-TOY", "LWE_TOY":
		config.Params = core.ToyParams
	case "256", "LWE-256", "LWE_256":
		config.Params = core.LWE256Params
		config.Mode = analysis.Symmetric
	case "":
		// No preset specified, use default
	default:
		return config, fmt.Errorf("invalid parameter set '%s'. Must be one of: toy, 256", set)
	}

	if hasFlag(args, "--n", "") || hasFlag(args, "--q", "") || hasFlag(args, "--sigma", "") {
		n, err := intArg(args, "--n", "", config.Params.N)
		if err != nil {
			return config, err
		}
		q, err := intArg(args, "--q", "", config.Params.Q)
		if err != nil {
			return config, err
		}
		sigma := config.Params.Sigma
		if s := getArg(args, "--sigma", ""); s != "" {
			if sigma, err = strconv.ParseFloat(s, 64); err != nil {
				return config, fmt.Errorf("invalid --sigma '%s': %v", s, err)
			}
		}
		if config.Params, err = core.CustomParams(n, q, sigma); err != nil {
			return config, err
		}
	}

	if m := getArg(args, "--mode", "-m"); m != "" {
		mode, err := analysis.ParseMode(m)
		if err != nil {
			return config, err
		}
		config.Mode = mode
	}

	bit, err := intArg(args, "--bit", "-b", 1)
	if err != nil {
		return config, err
	}
	if bit != 0 && bit != 1 {
		return config, fmt.Errorf("invalid bit %d. Must be 0 or 1", bit)
	}
	config.Bit = bit

	if s := getArg(args, "--seed", ""); s != "" {
		seed, err := hex.DecodeString(s)
		if err != nil {
			return config, fmt.Errorf("invalid --seed: %v", err)
		}
		config.Seed = seed
	}

	if config.Workers, err = intArg(args, "--workers", "-w", 0); err != nil {
		return config, err
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "json":
		config.OutputFormat = FormatJSON
	case "text":
		config.OutputFormat = FormatText
	case "":
		// No format specified, use default
	default:
		return config, fmt.Errorf("invalid format '%s'. Must be one of: json, text", format)
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.Verbose = hasFlag(args, "--verbose", "")
	config.Timing = hasFlag(args, "--timing", "-t")

	return config, nil
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func intArg(args []string, long, short string, def int) (int, error) {
	s := getArg(args, long, short)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %v", long, s, err)
	}
	return v, nil
}

// seedRandomness derives the encryption randomness used by demo --seed.
func seedRandomness(seed []byte) []byte {
	r := make([]byte, pke.RandomnessSize)
	for i := range r {
		r[i] = seed[i%len(seed)] ^ byte(0x5c+i)
	}
	return r
}

func timeIt(iterations int, fn func() error) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		err := fn()
		total += time.Since(start)
		if err != nil {
			return 0, err
		}
	}
	return total / time.Duration(iterations), nil
}

func bitErrors(a, b []byte) int {
	errs := 0
	for i := range a {
		var x byte
		if i < len(b) {
			x = b[i]
		}
		d := a[i] ^ x
		for d != 0 {
			errs += int(d & 1)
			d >>= 1
		}
	}
	return errs
}

func writeJSON(v any, filename string, stdout io.Writer) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %v", err)
	}
	return writeOutput(output, filename, stdout)
}

func writeOutput(data []byte, filename string, stdout io.Writer) error {
	if filename == "" {
		_, err := fmt.Fprintln(stdout, string(data))
		return err
	}

	// Reports may describe key material, so keep them owner-only.
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating output file: %v", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing output file: %v", err)
	}
	if err := os.Chmod(filename, 0600); err != nil {
		return fmt.Errorf("setting file permissions: %v", err)
	}
	return nil
}
