package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/logging"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/ecdsarecovery"
)

const usage = `Usage: ecrecover <command> [flags]

Commands:
  sign     Sign a message with a hex private key
  verify   Check a signature against a public key
  recover  Recover the signer's public key from a message and signature
  batch    Recover the signers of every record in a JSON or CSV file
  hash     Print the hex digest of a message

Run "ecrecover <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "sign":
		err = runSign(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "recover":
		err = runRecover(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "hash":
		err = runHash(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are shared by every command.
type commonFlags struct {
	hash     *string
	logLevel *string
}

func newFlagSet(name string) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, commonFlags{
		hash:     fs.String("hash", "sha256", "Message hash function ("+strings.Join(digest.Names(), ", ")+")"),
		logLevel: fs.String("log-level", "error", "Log level (debug, info, warn, error)"),
	}
}

func (c commonFlags) client() (*ecdsarecovery.Client, error) {
	hash, err := digest.ByName(*c.hash)
	if err != nil {
		return nil, err
	}
	if err := logging.SetLevel(*c.logLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return ecdsarecovery.NewClient().WithHash(hash).WithLogger(logging.New()), nil
}

func requireFlags(fs *flag.FlagSet, values map[string]string) error {
	for name, v := range values {
		if v == "" {
			fs.Usage()
			return fmt.Errorf("--%s is required", name)
		}
	}
	return nil
}

func runSign(args []string) error {
	fs, common := newFlagSet("sign")
	message := fs.String("message", "", "Message to sign")
	privateKey := fs.String("private-key", "", "Private key in hex (32 bytes)")
	format := fs.String("format", "hex", "Output format (hex, json, compact)")
	fs.Parse(args)

	if err := requireFlags(fs, map[string]string{"private-key": *privateKey}); err != nil {
		return err
	}
	client, err := common.client()
	if err != nil {
		return err
	}

	sigHex, err := client.SignMessage(*message, *privateKey)
	if err != nil {
		return err
	}

	switch *format {
	case "hex":
		fmt.Println(sigHex)
	case "json", "compact":
		sig, err := ecdsarecovery.ParseSignatureHex(sigHex)
		if err != nil {
			return err
		}
		if *format == "json" {
			out, err := sig.MarshalJSONEnvelope()
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			out, err := sig.Compact(false)
			if err != nil {
				return err
			}
			fmt.Printf("%x\n", out)
		}
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	return nil
}

func runVerify(args []string) error {
	fs, common := newFlagSet("verify")
	message := fs.String("message", "", "Signed message")
	publicKey := fs.String("public-key", "", "Public key in hex (uncompressed, raw x||y or compressed)")
	signature := fs.String("signature", "", "Signature (hex, base64 or JSON envelope)")
	fs.Parse(args)

	if err := requireFlags(fs, map[string]string{"public-key": *publicKey, "signature": *signature}); err != nil {
		return err
	}
	client, err := common.client()
	if err != nil {
		return err
	}

	if !client.ValidateSignature(*message, *publicKey, *signature) {
		fmt.Println("✗ Signature is NOT valid")
		os.Exit(2)
	}
	fmt.Println("✓ Signature is valid")
	return nil
}

func runRecover(args []string) error {
	fs, common := newFlagSet("recover")
	message := fs.String("message", "", "Signed message")
	signature := fs.String("signature", "", "Signature (hex, base64 or JSON envelope)")
	expected := fs.String("public-key", "", "Optional expected public key; selects among candidates for legacy signatures")
	fs.Parse(args)

	if err := requireFlags(fs, map[string]string{"signature": *signature}); err != nil {
		return err
	}
	client, err := common.client()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if *expected == "" {
		result, err := client.RecoverPublicKey(ctx, *message, *signature)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	}

	pub, err := ecdsarecovery.ParsePublicKeyHex(*expected)
	if err != nil {
		return err
	}
	sig, err := ecdsarecovery.DecodeSignature(*signature)
	if err != nil {
		return err
	}
	record := &ecdsarecovery.SignedRecord{
		Message:   []byte(*message),
		Digest:    client.Digest(*message),
		Signature: sig,
		PublicKey: pub,
	}
	results, err := client.RecoverRecords(ctx, []*ecdsarecovery.SignedRecord{record})
	if err != nil {
		return err
	}
	if results[0].Err != nil {
		return results[0].Err
	}
	printResult(results[0].Result)
	return nil
}

func runBatch(args []string) error {
	fs, common := newFlagSet("batch")
	records := fs.String("records", "", "Path to records file (JSON or CSV)")
	format := fs.String("format", "", "Records file format (json or csv; default: from extension)")
	strategyName := fs.String("strategy", "adaptive", "Recovery strategy (adaptive, recovery-id, exhaustive)")
	numWorkers := fs.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
	stopOnError := fs.Bool("stop-on-error", false, "Abort at the first failing record")
	fs.Parse(args)

	if err := requireFlags(fs, map[string]string{"records": *records}); err != nil {
		return err
	}
	client, err := common.client()
	if err != nil {
		return err
	}
	hash, _ := digest.ByName(*common.hash)

	var strategy ecdsarecovery.RecoveryStrategy
	switch *strategyName {
	case "adaptive":
		strategy = ecdsarecovery.NewAdaptiveStrategy().WithLogger(logging.New())
	case "recovery-id":
		strategy = ecdsarecovery.RecoveryIDStrategy{}
	case "exhaustive":
		strategy = ecdsarecovery.ExhaustiveStrategy{}
	default:
		return fmt.Errorf("unknown strategy %q", *strategyName)
	}
	client = client.WithStrategy(strategy).WithBatchConfig(ecdsarecovery.BatchConfig{
		NumWorkers:  *numWorkers,
		StopOnError: *stopOnError,
	})

	switch *format {
	case "":
	case "json":
		client = client.WithParser(&ecdsarecovery.JSONParser{Hash: hash})
	case "csv":
		client = client.WithParser(&ecdsarecovery.CSVParser{Hash: hash})
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	fmt.Printf("Loading records from %s...\n", *records)
	results, err := client.RecoverFile(context.Background(), *records)
	if results == nil && err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("[%d] ✗ %v\n", res.Index, res.Err)
			continue
		}
		marker := ""
		if res.Result.Matched {
			marker = " ✓ matches expected key"
		}
		fmt.Printf("[%d] %s (v=%s)%s\n", res.Index, res.Result.PublicKey.Hex(), res.Result.RecoveryID, marker)
	}
	fmt.Printf("\n%d records, %d recovered, %d failed\n", len(results), len(results)-failed, failed)

	if err != nil {
		return err
	}
	if failed > 0 {
		os.Exit(2)
	}
	return nil
}

func runHash(args []string) error {
	fs, common := newFlagSet("hash")
	message := fs.String("message", "", "Message to hash")
	check := fs.String("check", "", "Optional expected hex digest to compare against")
	fs.Parse(args)

	hash, err := digest.ByName(*common.hash)
	if err != nil {
		return err
	}

	if *check != "" {
		if !digest.Check(hash, *message, *check) {
			fmt.Println("✗ Digest does NOT match")
			os.Exit(2)
		}
		fmt.Println("✓ Digest matches")
		return nil
	}

	out, err := digest.HexDigest(hash, *message)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printResult(result *ecdsarecovery.RecoveryResult) {
	fmt.Printf("[+] Recovered public key:\n")
	fmt.Printf("    %s\n", result.PublicKey.Hex())
	fmt.Printf("    Recovery id: %s\n", result.RecoveryID)
	fmt.Printf("    Strategy: %s (%d candidate(s))\n", result.Strategy, result.Candidates)
	if result.Matched {
		fmt.Println("    ✓ Matches expected public key!")
	}
}
