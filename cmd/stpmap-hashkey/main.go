// stpmap-hashkey prints the bcrypt hash of an API key for use with
// -api-key-hash / STPMAP_API_KEY_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/lcalzada-xor/stpmap/internal/adapters/web/middleware"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: stpmap-hashkey <api-key>")
		os.Exit(2)
	}

	hash, err := middleware.HashAPIKey(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
