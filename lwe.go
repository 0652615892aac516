// Package lwe implements a minimal Learning-With-Errors bit encryption scheme.
//
// Two key-management modes share one encryption core: a public-key mode where the
// matrix A and vector b = A·s + e are published, and a shared-key mode where each
// encryption draws its own ephemeral A and b from the shared secret. This package
// holds the shared types; key generation, encryption and decryption live in
// sub-packages.
//
// WARNING: The parameter presets are for demonstration. They are not a vetted
// post-quantum parameter selection, and the noise sampler is not constant time.
//
// The secret vector s is drawn from the noise distribution (a rounded Gaussian
// normalized into [0, q)), not uniformly from [0, q)^n. With a uniform s the term e1·s
// of the decryption noise is itself uniform and decryption fails about half the time.
package lwe

// Version of the lwe-go implementation.
const Version = "0.3.0"

// API summary:
//
// Public-key mode:
//   - pke.GenerateKeyPair(set) - Generate a public/secret key pair
//   - pke.Encrypt(pk, bit) - Encrypt a single bit under the public key
//   - pke.Decrypt(sk, ct) - Recover the bit with the secret vector
//   - pke.EncryptBytes(pk, msg) / pke.DecryptBytes(sk, cts) - One ciphertext per bit
//
// Shared-key mode:
//   - ske.GenerateKey(set) - Generate a shared secret vector
//   - ske.Encrypt(key, bit) - Encrypt a bit with a fresh ephemeral matrix
//   - ske.Decrypt(key, ct) - Recover the bit
//
// Parameters:
//   - core.GetParams(set) - Get a named parameter set
//   - LWE_TOY - n=5, q=257, sigma=1
//   - LWE_256 - n=256, q=8380417, sigma=3.19
//
// Analysis:
//   - analysis.FailureBound(params) - Analytic decryption failure bound
//   - analysis.RunTrials(cfg) - Empirical round trip failure rate
