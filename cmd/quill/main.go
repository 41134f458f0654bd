// cmd/quill/main.go
//
// Quill – operator CLI.
//
// Commands
// --------
//
//	assign-ids   backfill missing identifiers into content files (fs only)
//	list         canonical tokens per locale, newest first (JSON)
//	resolve      offline resolution of one token (JSON)
//	sitemap      sitemap.xml, or the static params list with --params
//
// Configuration is the same conf/global.yaml the server reads; --root points
// at a different project root.  Logs go to stderr so stdout stays clean for
// JSON and XML.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}
}
