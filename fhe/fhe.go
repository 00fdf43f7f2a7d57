// Package fhe defines the boundary to the homomorphic co-processor that
// executes arithmetic, comparison and selection over encrypted values.
//
// Callers only ever hold opaque 32-byte handles. Plaintext never crosses
// this boundary except through the decryption oracle, and only for viewers
// that were explicitly granted access to the handle in question.
package fhe

import (
	"encoding/hex"

	"github.com/cockroachdb/errors"
)

// HandleSize is the byte length of a ciphertext handle.
const HandleSize = 32

// Handle is an opaque reference to an encrypted value held by the
// co-processor. The zero Handle refers to nothing.
type Handle [HandleSize]byte

// ZeroHandle is the distinguished empty handle.
var ZeroHandle Handle

// IsZero reports whether h refers to no ciphertext.
func (h Handle) IsZero() bool { return h == ZeroHandle }

// Hex returns the handle as a lowercase hex string.
func (h Handle) Hex() string { return hex.EncodeToString(h[:]) }

// EncryptedInput is an externally produced ciphertext together with a
// proof binding it to the context it was encrypted for. It must pass
// Coprocessor.VerifyInput before it is usable.
type EncryptedInput struct {
	Ciphertext []byte
	Proof      []byte
}

// InputContext identifies where and by whom an encrypted input may be
// imported. The proof of an EncryptedInput commits to both fields.
type InputContext struct {
	Contract string
	Sender   string
}

var (
	// ErrInvalidProof is returned when an encrypted input fails proof
	// validation against its context.
	ErrInvalidProof = errors.New("fhe: invalid input proof")

	// ErrNotAuthorized is returned by the decryption oracle when the
	// viewer holds no grant for the handle.
	ErrNotAuthorized = errors.New("fhe: viewer not authorized for handle")
)

// Coprocessor is the homomorphic instruction set available to contract
// code. All operations are pure over handles: each returns a fresh handle
// carrying no grants of its own, regardless of the grants on its inputs.
//
// Operands must carry a compute grant. Operating on an ungranted handle is
// a programming error in the calling contract, not a recoverable
// condition; implementations abort.
type Coprocessor interface {
	// TrivialEncrypt produces a ciphertext of a public constant.
	TrivialEncrypt(v uint32) Handle

	// VerifyInput validates an externally encrypted input against ctx and
	// imports it, returning the internal handle. Fails with
	// ErrInvalidProof without importing anything if the proof does not
	// match the ciphertext and context.
	VerifyInput(in EncryptedInput, ctx InputContext) (Handle, error)

	// Add returns a ciphertext of a+b.
	Add(a, b Handle) Handle
	// Sub returns a ciphertext of a-b.
	Sub(a, b Handle) Handle
	// Min returns a ciphertext of min(a,b).
	Min(a, b Handle) Handle
	// Gt returns an encrypted boolean, true iff a > b.
	Gt(a, b Handle) Handle
	// Select returns ifTrue when cond holds, ifFalse otherwise.
	Select(cond, ifTrue, ifFalse Handle) Handle

	// GrantCompute permits future co-processor operations to use the
	// handle as an operand. Idempotent.
	GrantCompute(h Handle)
	// GrantView permits the named viewer to decrypt the handle through
	// the oracle. Idempotent.
	GrantView(h Handle, viewer string)
}

// Oracle decrypts handles for viewers that hold a view grant. In
// production this is a threshold-decryption service; the in-process
// Enclave implements it directly.
type Oracle interface {
	Decrypt(h Handle, viewer string) (uint32, error)
}
