// Command qrms-keygen generates an APQC keyset and prints its public key
// sizes and algorithm-set tag, the CLI-tooling counterpart spec.md leaves
// unspecified. Grounded on tools/x402sign/main.go's flag-parsing,
// usage(), and log.Fatalf error-reporting style.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/splendor-labs/qrms/apqc"
	"github.com/splendor-labs/qrms/logx"
)

func usage() {
	fmt.Fprintf(os.Stderr, `qrms-keygen - generate an APQC dual keyset (ML-DSA-87 + SLH-DSA-256s)

Usage:
  # Generate a fresh keyset and print its public key sizes / algorithm tag
  qrms-keygen generate

  # Generate without the classical ECDSA hybrid component
  qrms-keygen -ecdsa=false generate

`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	includeECDSA := flag.Bool("ecdsa", true, "include the classical ECDSA hybrid component")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	switch flag.Arg(0) {
	case "generate":
		runGenerate(*includeECDSA)
	default:
		usage()
	}
}

func runGenerate(includeECDSA bool) {
	cfg := apqc.DefaultConfig()
	cfg.IncludeECDSA = includeECDSA

	engine, err := apqc.New(cfg, logx.New("tool", "qrms-keygen"))
	if err != nil {
		log.Fatalf("generate keyset: %v", err)
	}

	pub, err := engine.PublicKeys()
	if err != nil {
		log.Fatalf("read public keys: %v", err)
	}

	fmt.Printf("algorithm_set: %s\n", pub.AlgorithmSetTag)
	fmt.Printf("mldsa_public_key_bytes: %d\n", len(pub.MLDSA))
	fmt.Printf("slhdsa_public_key_bytes: %d\n", len(pub.SLHDSA))
	if len(pub.ECDSA) > 0 {
		fmt.Printf("ecdsa_public_key: 0x%s\n", hex.EncodeToString(pub.ECDSA))
	}
}
