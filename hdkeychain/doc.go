// Package hdkeychain provides hierarchical-deterministic key derivation
// over the SDK's curve: a seed expands into a master node, and each node
// derives hardened or non-hardened children whose private keys combine the
// HMAC output with the parent scalar modulo the curve order. Derivation is
// fully deterministic: the same seed and path always yield bit-identical
// keys.
//
// Public-only nodes support non-hardened derivation without any private
// material, which is what makes watch-only account discovery possible.
package hdkeychain
