// Package script builds and parses the verification scripts the ledger's
// virtual machine executes to authorize transactions: the 40-byte single
// signature pattern and the N-of-M threshold multisig pattern.
//
// Classification is total: every byte string falls into exactly one of
// empty, singlesig, multisig or custom, and custom is an answer rather than
// an error. Key and threshold extraction always re-parse the raw bytes, so
// the script can never disagree with its own derived attributes.
package script
