package main

import (
	"os"

	"tarediiran-industries.com/trainbot/internal/api"
)

func main() {
	os.Exit(api.Main(os.Args[0], os.Args[1:], os.Stdout, os.Stderr))
}
