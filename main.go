package main

import (
	"github.com/casamora/storefront/cmd"
)

func main() {
	cmd.Start()
}
