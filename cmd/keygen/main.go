// Package main generates the secrets the server reads from the environment:
// the admin API key (with its bcrypt hash) and the issuer's Ed25519 seed.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gympass/internal/issuer"
	"gympass/pkg/secrets"
)

func main() {
	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedJSON := seedCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		generateAdminKey(*adminJSON)
	case "seed":
		_ = seedCmd.Parse(os.Args[2:])
		generateIssuerSeed(*seedJSON)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: keygen <admin|seed> [-json]")
	fmt.Fprintln(os.Stderr, "  admin  generate an admin API key and its bcrypt hash")
	fmt.Fprintln(os.Stderr, "  seed   generate an Ed25519 issuer seed and its DID")
}

func generateAdminKey(asJSON bool) {
	key, err := secrets.Generate()
	if err != nil {
		fatal(err)
	}
	hash, err := secrets.Hash(key)
	if err != nil {
		fatal(err)
	}

	if asJSON {
		printJSON(map[string]string{"api_key": key, "hash": hash})
		return
	}
	fmt.Printf("API key (give to the operator, shown once):\n  %s\n\n", key)
	fmt.Printf("Server environment:\n  GYMPASS_ADMIN_API_KEY_HASH=%s\n", hash)
}

func generateIssuerSeed(asJSON bool) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		fatal(err)
	}
	seedHex := hex.EncodeToString(seed)

	identity, err := issuer.FromSeed(seedHex)
	if err != nil {
		fatal(err)
	}

	if asJSON {
		printJSON(map[string]string{"seed": seedHex, "did": identity.DID()})
		return
	}
	fmt.Printf("Issuer DID:\n  %s\n\n", identity.DID())
	fmt.Printf("Server environment (keep secret):\n  GYMPASS_ISSUER_SEED=%s\n", seedHex)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
