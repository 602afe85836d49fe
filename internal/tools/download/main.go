// Command download fetches a distribution archive into a local directory,
// verifying its checksum. Development helper for seeding a distributions
// directory without a fetching loader.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: download <url> <sha256> <output>")
		os.Exit(1)
	}

	url, sum, output := os.Args[1], os.Args[2], os.Args[3]

	if _, err := os.Stat(output); err == nil {
		return
	}

	resp, err := http.Get(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "download failed: %s\n", resp.Status)
		os.Exit(1)
	}

	tmp := output + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	f.Close()

	if got := hex.EncodeToString(h.Sum(nil)); got != sum {
		os.Remove(tmp)
		fmt.Fprintf(os.Stderr, "checksum mismatch: got %s, want %s\n", got, sum)
		os.Exit(1)
	}

	if err := os.Rename(tmp, output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
