package fhe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/sha3"
)

// Enclave is an in-process co-processor. It keeps every plaintext sealed
// behind its handle and performs the homomorphic instruction set on the
// sealed records directly, the way a key-holding co-processor or TEE
// would. It also serves as the decryption oracle for granted viewers.
//
// Handles are keccak-256 digests over a domain tag, a per-enclave nonce
// and the operation inputs, so they are unique and carry no plaintext.
type Enclave struct {
	mu sync.Mutex

	aead  cipher.AEAD
	nonce uint64

	values  map[Handle]sealedValue
	compute map[Handle]bool
	viewers map[Handle]map[string]bool
}

// NewEnclave creates an enclave with a fresh random sealing key.
func NewEnclave() *Enclave {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &Enclave{
		aead:    aead,
		values:  make(map[Handle]sealedValue),
		compute: make(map[Handle]bool),
		viewers: make(map[Handle]map[string]bool),
	}
}

const handleDomain = "ztarena/fhe/handle/v1"

func (e *Enclave) newHandle(op string, parts ...[]byte) Handle {
	e.nonce++
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(handleDomain))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], e.nonce)
	h.Write(n[:])
	h.Write([]byte(op))
	for _, p := range parts {
		h.Write(p)
	}
	var out Handle
	copy(out[:], h.Sum(nil))
	return out
}

// operand fetches a sealed value, aborting when the handle is unknown or
// lacks a compute grant. A missing grant means the calling contract
// forgot a grant step; there is no recovery.
func (e *Enclave) operand(h Handle) sealedValue {
	v, ok := e.values[h]
	if !ok {
		panic(fmt.Sprintf("fhe: unknown handle %s", h.Hex()))
	}
	if !e.compute[h] {
		panic(fmt.Sprintf("fhe: handle %s not granted for computation", h.Hex()))
	}
	return v
}

func (e *Enclave) put(op string, v sealedValue, inputs ...Handle) Handle {
	parts := make([][]byte, 0, len(inputs))
	for i := range inputs {
		parts = append(parts, inputs[i][:])
	}
	h := e.newHandle(op, parts...)
	e.values[h] = v
	return h
}

// TrivialEncrypt implements Coprocessor.
func (e *Enclave) TrivialEncrypt(v uint32) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.put("trivial", sealValue(v))
}

// Add implements Coprocessor. Commitments combine homomorphically.
func (e *Enclave) Add(a, b Handle) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.put("add", addSealed(e.operand(a), e.operand(b)), a, b)
}

// Sub implements Coprocessor. Commitments combine homomorphically.
func (e *Enclave) Sub(a, b Handle) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.put("sub", subSealed(e.operand(a), e.operand(b)), a, b)
}

// Min implements Coprocessor. The result is re-sealed under a fresh
// blinding factor so the outcome does not leak which operand was chosen.
func (e *Enclave) Min(a, b Handle) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	av, bv := e.operand(a), e.operand(b)
	out := av.value
	if bv.value < out {
		out = bv.value
	}
	return e.put("min", sealValue(out), a, b)
}

// Gt implements Coprocessor. The result is an encrypted boolean (0 or 1).
func (e *Enclave) Gt(a, b Handle) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	av, bv := e.operand(a), e.operand(b)
	var out uint32
	if av.value > bv.value {
		out = 1
	}
	return e.put("gt", sealValue(out), a, b)
}

// Select implements Coprocessor. Like Min, the result is re-sealed so the
// chosen branch is not identifiable from the published commitment.
func (e *Enclave) Select(cond, ifTrue, ifFalse Handle) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	cv := e.operand(cond)
	tv, fv := e.operand(ifTrue), e.operand(ifFalse)
	out := fv.value
	if cv.value != 0 {
		out = tv.value
	}
	return e.put("select", sealValue(out), cond, ifTrue, ifFalse)
}

// GrantCompute implements Coprocessor.
func (e *Enclave) GrantCompute(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.values[h]; !ok {
		panic(fmt.Sprintf("fhe: unknown handle %s", h.Hex()))
	}
	e.compute[h] = true
}

// GrantView implements Coprocessor.
func (e *Enclave) GrantView(h Handle, viewer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.values[h]; !ok {
		panic(fmt.Sprintf("fhe: unknown handle %s", h.Hex()))
	}
	m := e.viewers[h]
	if m == nil {
		m = make(map[string]bool)
		e.viewers[h] = m
	}
	m[viewer] = true
}

// Decrypt implements Oracle. It fails closed: no grant, no plaintext.
func (e *Enclave) Decrypt(h Handle, viewer string) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[h]
	if !ok {
		return 0, errors.Wrapf(ErrNotAuthorized, "handle %s", h.Hex())
	}
	if !e.viewers[h][viewer] {
		return 0, errors.Wrapf(ErrNotAuthorized, "viewer %s, handle %s", viewer, h.Hex())
	}
	return v.value, nil
}

// CanCompute reports whether the handle carries a compute grant.
func (e *Enclave) CanCompute(h Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compute[h]
}

// CanView reports whether the viewer holds a view grant for the handle.
func (e *Enclave) CanView(h Handle, viewer string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewers[h][viewer]
}

// CommitmentOf returns the published Pedersen commitment for a handle.
func (e *Enclave) CommitmentOf(h Handle) (Commitment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[h]
	if !ok {
		return Commitment{}, false
	}
	return v.commitment(), true
}

// ---------- Encrypted input import ----------

func inputProof(ciphertext []byte, ctx InputContext) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("ztarena/fhe/input/v1"))
	h.Write(ciphertext)
	h.Write([]byte(ctx.Contract))
	h.Write([]byte{0})
	h.Write([]byte(ctx.Sender))
	return h.Sum(nil)
}

func inputAAD(ctx InputContext) []byte {
	return []byte(ctx.Contract + "\x00" + ctx.Sender)
}

// SealInput encrypts a plaintext for import under the given context. In a
// deployed system this runs in the client library against the network's
// public key material; here the enclave plays both roles.
func (e *Enclave) SealInput(value uint32, ctx InputContext) EncryptedInput {
	var pt [4]byte
	binary.BigEndian.PutUint32(pt[:], value)

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		panic(err)
	}
	ct := e.aead.Seal(nonce, nonce, pt[:], inputAAD(ctx))
	return EncryptedInput{Ciphertext: ct, Proof: inputProof(ct, ctx)}
}

// VerifyInput implements Coprocessor. Nothing is imported on failure.
func (e *Enclave) VerifyInput(in EncryptedInput, ctx InputContext) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	want := inputProof(in.Ciphertext, ctx)
	if !hmac.Equal(in.Proof, want) {
		return ZeroHandle, errors.Wrapf(ErrInvalidProof, "sender %s", ctx.Sender)
	}

	ns := e.aead.NonceSize()
	if len(in.Ciphertext) < ns {
		return ZeroHandle, errors.Wrap(ErrInvalidProof, "short ciphertext")
	}
	pt, err := e.aead.Open(nil, in.Ciphertext[:ns], in.Ciphertext[ns:], inputAAD(ctx))
	if err != nil || len(pt) != 4 {
		return ZeroHandle, errors.Wrap(ErrInvalidProof, "ciphertext does not open")
	}
	value := binary.BigEndian.Uint32(pt)
	return e.put("input", sealValue(value)), nil
}
