package main

import (
	"github.com/joho/godotenv"

	"github.com/rebblit/rebblit-db/cmd/rebblit/commands"
)

func main() {
	// A missing .env is fine, the environment may be set by the host.
	_ = godotenv.Load()

	commands.Execute()
}
