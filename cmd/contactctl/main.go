// cmd/contactctl/main.go
//
// Folio – contact form CLI.
//
//	contactctl validate --name Jane --email jane@example.com --subject Hi --message "…"
//	contactctl send     --name Jane … [--dry-run] [--endpoint URL]
package main

import (
	"os"

	"github.com/yanizio/folio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
