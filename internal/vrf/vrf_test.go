package vrf

import "testing"

func TestValueFromOutputLittleEndian(t *testing.T) {
	var output [32]byte
	output[0] = 0x01
	output[1] = 0x00
	output[7] = 0x00
	if got, want := ValueFromOutput(output), uint64(1); got != want {
		t.Fatalf("got %d want %d", got, want)
	}

	output = [32]byte{}
	output[7] = 0x01 // high byte of the little-endian u64
	if got, want := ValueFromOutput(output), uint64(1)<<56; got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestThresholdFromStakeZeroTotal(t *testing.T) {
	if got := ThresholdFromStake(0, 0); got != 0 {
		t.Fatalf("zero total stake must abstain via zero threshold, got %d", got)
	}
}

func TestThresholdFromStakeZeroMineReproducesGap(t *testing.T) {
	const maxUint64 = ^uint64(0)
	if got := ThresholdFromStake(0, 100); got != maxUint64 {
		t.Fatalf("mine=0 must reproduce the unmodified formula's max threshold, got %d", got)
	}
}

func TestThresholdFromStakeFullStake(t *testing.T) {
	if got, want := ThresholdFromStake(100, 100), ^uint64(0); got != want {
		t.Fatalf("sole staker should get the maximum threshold, got %d want %d", got, want)
	}
}

func TestThresholdFromStakeProportional(t *testing.T) {
	half := ThresholdFromStake(50, 100)
	full := ThresholdFromStake(100, 100)
	if half >= full {
		t.Fatalf("half stake must yield a strictly smaller threshold than full stake: half=%d full=%d", half, full)
	}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	kp, err := NewRandomKeypair()
	if err != nil {
		t.Fatalf("new keypair: %v", err)
	}

	transcript := []byte("parent-block-hash")
	output, proof, err := kp.Prove(transcript)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	ok, err := Verify(kp.PublicKeyBytes(), transcript, output[:], proof[:])
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("valid vrf proof failed to verify")
	}
}

func TestVerifyRejectsWrongTranscript(t *testing.T) {
	kp, err := NewRandomKeypair()
	if err != nil {
		t.Fatalf("new keypair: %v", err)
	}

	output, proof, err := kp.Prove([]byte("parent-a"))
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	ok, err := Verify(kp.PublicKeyBytes(), []byte("parent-b"), output[:], proof[:])
	if err == nil && ok {
		t.Fatal("proof for one transcript must not verify against another")
	}
}

func TestNewKeypairFromSeedDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	a, err := NewKeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("new keypair from seed: %v", err)
	}
	b, err := NewKeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("new keypair from seed: %v", err)
	}
	if a.PublicKeyBytes() != b.PublicKeyBytes() {
		t.Fatal("same seed must derive the same public key")
	}
}
