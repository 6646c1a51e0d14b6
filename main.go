package main

import (
	_ "embed"

	"starlings/cmd"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // We need this to make TLS work in scratch containers
)

func main() {
	// Missing .env files are fine; environment variables still apply
	godotenv.Load()

	cmd.Execute()
}
