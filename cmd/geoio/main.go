package main

import (
	"context"
	"os"

	"github.com/jkoenig1013/geoio/cmd/geoio/cmd"
)

func main() {
	if err := cmd.NewRoot(context.Background()).Execute(); err != nil {
		os.Exit(1)
	}
}
