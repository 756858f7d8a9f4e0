// Command slugctl is the operator CLI for petadot slugs: it previews slugs,
// resolves them against the store, runs backfills, applies migrations and
// issues principal tokens for scripts.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
