// Package nep2 implements password-based private key encryption: a single
// key wrapped into a fixed-length printable record using a memory-hard KDF
// and a block cipher, salted by a hash of the key's own address so that a
// decrypt attempt is self-verifying.
//
// The scrypt step is deliberately expensive; its cost is the brute-force
// deterrent, not a defect. Callers that need to keep a UI responsive should
// run Encrypt and Decrypt off the interactive path.
package nep2
