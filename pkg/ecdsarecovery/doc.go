// Package ecdsarecovery implements recoverable ECDSA signatures over
// secp256k1: signing, verification and reconstruction of the signer's public
// key from a signature and the signed digest.
//
// All arithmetic is done by the curve and field packages of this module.
// Callers hash messages themselves (see package digest) and pass 32-byte
// digests.
//
// # Conventions
//
// Signatures produced here are low-s. The recovery id is 2·overflow + parity,
// where overflow is set when the nonce point's x coordinate was at least n
// and parity is that of its y coordinate after low-s normalization. This is
// the convention of Bitcoin compact signatures, so Compact(false) output
// interoperates with other secp256k1 implementations.
//
// Every recovered key is confirmed with Verify before it is returned.
//
// # Quick Start
//
//	d, _ := ecdsarecovery.ParsePrivateKeyHex("eec2...")
//	h := digest.SHA256([]byte("abc"))
//
//	sig, err := ecdsarecovery.Sign(d, h)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pub, err := ecdsarecovery.RecoverPublicKey(sig, h)
//	fmt.Println(pub.Hex(), sig.Hex())
//
// # Records and strategies
//
// For files of signed records the Client combines a SignatureParser
// (JSONParser or CSVParser), a RecoveryStrategy and the parallel batch
// engine:
//
//	client := ecdsarecovery.NewClient().
//	    WithStrategy(ecdsarecovery.ExhaustiveStrategy{}).
//	    WithBatchConfig(ecdsarecovery.BatchConfig{NumWorkers: 8})
//
//	results, err := client.RecoverFile(ctx, "signatures.json")
package ecdsarecovery
