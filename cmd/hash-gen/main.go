package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"nexacred.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = crypto.HashPassword
	fatalfFn       = log.Fatalf
)

// defaultPassword seeds local admin accounts. Deployments pass their own.
const defaultPassword = "NexaCred.Admin-2026"

func resolvePassword(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultPassword
}

func run(args []string) {
	fs := flag.NewFlagSet("hash-gen", flag.ContinueOnError)
	check := fs.String("check", "", "verify the password against this bcrypt hash instead of generating one")
	if err := fs.Parse(args); err != nil {
		fatalfFn("Failed to parse flags: %v", err)
		return
	}

	password := resolvePassword(fs.Args())

	if *check != "" {
		if !crypto.CheckPassword(password, *check) {
			fatalfFn("Hash does not match password")
			return
		}
		printfFn("Hash matches password\n")
		return
	}

	printfFn("Generating hash for password: %s\n", password)

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}

func main() {
	run(os.Args[1:])
}
