// docsift filters, collapses and unwraps annotated YAML/JSON documents.
package main

import (
	"os"

	"github.com/hupe1980/docsift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
