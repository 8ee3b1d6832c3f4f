// Package vrf wraps the Schnorrkel (ristretto255) verifiable random
// function used for leader election, isolating the rest of the node from
// the third-party go-schnorrkel API surface. Context and transcript
// conventions follow spec §4.1 exactly: every prove/verify call uses the
// fixed context label "methalox-vrf" and signs the ASCII bytes of the
// parent block's hex hash.
package vrf

import (
	"github.com/ChainSafe/go-schnorrkel"

	internalerrors "github.com/methalox/methaloxd/internal/errors"
)

// ContextLabel is the constant VRF signing context for every Methalox
// election, matching the reference implementation's "methalox-vrf" label.
const ContextLabel = "methalox-vrf"

// OutputSize is the length in bytes of a VRF pre-output.
const OutputSize = 32

// Keypair holds a Schnorrkel secret/public keypair used to prove and verify
// leader-election VRF outputs.
type Keypair struct {
	secret *schnorrkel.SecretKey
	public *schnorrkel.PublicKey
}

// NewKeypairFromSeed derives a deterministic keypair from a 32-byte seed.
// An all-zero seed is the genesis bootstrapping placeholder noted in
// spec §9 — callers must surface that, not hide it.
func NewKeypairFromSeed(seed [32]byte) (*Keypair, error) {
	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		return nil, err
	}
	secret := mini.ExpandEd25519()
	public, err := mini.Public()
	if err != nil {
		return nil, err
	}
	return &Keypair{secret: secret, public: public}, nil
}

// NewRandomKeypair generates a fresh keypair, used by non-genesis
// validators bootstrapping their own identity.
func NewRandomKeypair() (*Keypair, error) {
	mini, err := schnorrkel.NewRandomMiniSecretKey()
	if err != nil {
		return nil, err
	}
	secret := mini.ExpandEd25519()
	public, err := mini.Public()
	if err != nil {
		return nil, err
	}
	return &Keypair{secret: secret, public: public}, nil
}

// PublicKeyBytes returns the 32-byte encoded public key, for registration in
// the ledger's vrf_public_keys map.
func (k *Keypair) PublicKeyBytes() [32]byte {
	return k.public.Encode()
}

// Prove signs the transcript input (the ASCII bytes of the parent block's
// hex hash) under ContextLabel, returning the VRF pre-output and proof.
func (k *Keypair) Prove(transcriptInput []byte) (output [32]byte, proof [64]byte, err error) {
	t := schnorrkel.NewSigningContext([]byte(ContextLabel), transcriptInput)
	out, prf, err := k.secret.VrfSign(t)
	if err != nil {
		return output, proof, err
	}
	return out.Encode(), prf.Encode(), nil
}

// Verify checks a VRF proof against a registered public key and transcript
// input, per spec §4.5 step 4.
func Verify(pubKeyBytes [32]byte, transcriptInput []byte, output []byte, proof []byte) (bool, error) {
	if len(output) != 32 {
		return false, internalerrors.ErrVrfVerifyFailed
	}
	if len(proof) != 64 {
		return false, internalerrors.ErrVrfVerifyFailed
	}

	pub := schnorrkel.NewPublicKey(pubKeyBytes)

	var outArr [32]byte
	copy(outArr[:], output)
	var vrfOut schnorrkel.VrfOutput
	if err := vrfOut.Decode(outArr); err != nil {
		return false, err
	}

	var proofArr [64]byte
	copy(proofArr[:], proof)
	var vrfProof schnorrkel.VrfProof
	if err := vrfProof.Decode(proofArr); err != nil {
		return false, err
	}

	t := schnorrkel.NewSigningContext([]byte(ContextLabel), transcriptInput)
	return pub.VrfVerify(t, vrfOut, vrfProof)
}

// ValueFromOutput extracts the first 8 bytes of the VRF pre-output as a
// little-endian u64, per spec §4.3 step 3.
func ValueFromOutput(output [32]byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(output[i]) << (8 * uint(i))
	}
	return v
}

// ThresholdFromStake computes spec §4.3's stake-weighted election threshold:
// threshold = MaxUint64 - (MaxUint64 / total) * mine. It reproduces the
// reference formula's mine=0 edge case (threshold = MaxUint64, admitting
// every vrf_value) unmodified and on purpose: the gap itself is the
// documented open question, and the caller — not this function — is
// responsible for rejecting production when mine is 0 (see DESIGN.md).
func ThresholdFromStake(mine, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	const maxUint64 = ^uint64(0)
	return maxUint64 - (maxUint64/total)*mine
}
