package main

import (
	"os"

	"tarediiran-industries.com/trainbot/internal/web/trainbot_web"
)

func main() {
	os.Exit(trainbot_web.Main(os.Args[0], os.Args[1:], os.Stdout, os.Stderr))
}
