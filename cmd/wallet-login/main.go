package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nexacred.backend/internal/client"
)

// resolveKey parses a hex private key, or mints a throwaway key when none is
// given. Throwaway keys still complete the full flow: first-time wallets get
// a profile synthesized server side.
func resolveKey(keyHex string) (*ecdsa.PrivateKey, error) {
	if keyHex == "" {
		return ethcrypto.GenerateKey()
	}
	return ethcrypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
}

func runWalletLogin(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("wallet-login", flag.ContinueOnError)
	urlFlag := fs.String("url", "http://localhost:8080", "API base URL")
	keyFlag := fs.String("key", "", "hex private key (generates a throwaway key when empty)")
	timeoutFlag := fs.Duration("timeout", 30*time.Second, "overall flow timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := resolveKey(*keyFlag)
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	c := client.NewWalletClient(*urlFlag, key)
	_, _ = fmt.Fprintf(out, "Authenticating wallet %s against %s\n", c.Address(), *urlFlag)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	session, err := c.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("wallet auth failed: %w", err)
	}

	user, err := json.MarshalIndent(session.User, "", "  ")
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "TOKEN=%s\n", session.Token)
	_, _ = fmt.Fprintf(out, "USER=%s\n", user)
	return nil
}

func main() {
	if err := runWalletLogin(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
