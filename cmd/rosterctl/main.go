package main

import (
	"github.com/joho/godotenv"

	"github.com/mcoot/arise-roster/internal/cli"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()
	cli.Execute()
}
