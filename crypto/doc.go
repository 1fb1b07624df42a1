// Package crypto implements the key plane of the SDK: NIST P-256 key pairs,
// deterministic ECDSA signatures, the hash compositions used for script and
// address derivation, and the WIF private key encoding.
//
// Every operation in this package is a pure function over immutable inputs,
// so values may be shared freely between goroutines. Private key material is
// held in fixed-size arrays that callers can overwrite via Zero once the key
// is no longer needed.
package crypto
