package main

import (
	"os"

	"github.com/joho/godotenv"

	"termforum/internal/cli"
)

func main() {
	// Optional .env next to the binary; real env vars win.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
