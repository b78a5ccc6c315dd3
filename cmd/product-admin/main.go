// Command product-admin serves the admin product list as an HTML page and
// as an interactive terminal view.
package main

import (
	"context"
	"os"
)

// version is reported by --version.
const version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
