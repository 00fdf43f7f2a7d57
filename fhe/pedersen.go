package fhe

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Pedersen commitments over BN254. The enclave publishes one commitment
// per handle so observers can audit additive relations between encrypted
// values (a transfer nets to zero) without ever seeing plaintext.
//
// C(v, r) = v*G + r*H with H derived by hash-to-curve, so nobody knows
// the discrete log of H with respect to G.

const pedersenDST = "ZeroTrustArena/pedersen/v1"

var (
	pedersenG bn254.G1Affine
	pedersenH bn254.G1Affine
)

func init() {
	_, _, g1, _ := bn254.Generators()
	pedersenG = g1
	h, err := bn254.HashToG1([]byte("H"), []byte(pedersenDST))
	if err != nil {
		panic(err)
	}
	pedersenH = h
}

// Commitment is a compressed Pedersen commitment to an encrypted value.
type Commitment [bn254.SizeOfG1AffineCompressed]byte

func newBlinding() fr.Element {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		panic(err)
	}
	return r
}

func commitPoint(v uint32, r *fr.Element) bn254.G1Affine {
	var vBig, rBig big.Int
	vBig.SetUint64(uint64(v))
	r.BigInt(&rBig)

	var vg, rh bn254.G1Affine
	vg.ScalarMultiplication(&pedersenG, &vBig)
	rh.ScalarMultiplication(&pedersenH, &rBig)

	var acc bn254.G1Jac
	acc.FromAffine(&vg)
	acc.AddMixed(&rh)

	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}

func addPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var acc bn254.G1Jac
	acc.FromAffine(&a)
	acc.AddMixed(&b)
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}

func subPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var nb bn254.G1Affine
	nb.Neg(&b)
	return addPoints(a, nb)
}

// sealedValue is the enclave-internal record behind a handle: the
// plaintext, the commitment point and its blinding factor.
type sealedValue struct {
	value uint32
	point bn254.G1Affine
	blind fr.Element
}

func sealValue(v uint32) sealedValue {
	r := newBlinding()
	return sealedValue{value: v, point: commitPoint(v, &r), blind: r}
}

// addSealed combines two sealed values homomorphically: the plaintexts
// add, the blinds add, and the commitment points add on the curve.
func addSealed(a, b sealedValue) sealedValue {
	var r fr.Element
	r.Add(&a.blind, &b.blind)
	return sealedValue{
		value: a.value + b.value,
		point: addPoints(a.point, b.point),
		blind: r,
	}
}

func subSealed(a, b sealedValue) sealedValue {
	var r fr.Element
	r.Sub(&a.blind, &b.blind)
	return sealedValue{
		value: a.value - b.value,
		point: subPoints(a.point, b.point),
		blind: r,
	}
}

func (s sealedValue) commitment() Commitment {
	return Commitment(s.point.Bytes())
}
