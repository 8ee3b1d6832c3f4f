package ledger

// Protocol constants from spec §6 (boot constants) and §4.6 (tail issuance).
const (
	// SupplyCap is the soft cap on xsx_circulating; the base tail reward
	// keeps minting past it (spec §9 open question 2 — not hard-capped).
	SupplyCap = 105_000_000_000

	// BaseTailReward is minted every block regardless of shortfall.
	BaseTailReward = 50

	// CapToMintRatio divides the shortfall to the cap into the
	// shortfall-proportional component of the tail reward.
	CapToMintRatio = 10_000_000

	// FounderBurnRateNumerator/Denominator express the 1% XSX burn rate
	// applied to the founder's rake: burn = founder_rake * num / denom.
	FounderBurnRateNumerator   = 1
	FounderBurnRateDenominator = 100

	// FounderAddress is the boot constant from spec §6. It is 20 bytes
	// 0x-prefixed rather than the 32-byte Ed25519-key-encoding hex format
	// spec §3 defines for ordinary addresses, so it cannot sign
	// transactions itself.
	FounderAddress = "0x0e5f08ed743d1c6d9745f590e9850fd5169d8be2"

	// FounderSeedBalance and FounderSeedStake are the founder's genesis
	// allocations.
	FounderSeedBalance = 2_100_000_000
	FounderSeedStake   = 10_000_000

	// InitialXSXCirculating is the genesis value of xsx_circulating.
	InitialXSXCirculating = 21_000_000_000

	// GenesisTimestamp is fixed so every fresh-booted node derives a
	// byte-identical genesis block; a shared, non-deterministic wall
	// clock at genesis would make peers disagree before block 1.
	GenesisTimestamp = 0
)
