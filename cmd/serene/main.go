package main

import (
	"github.com/joho/godotenv"

	"github.com/serenelabs/serene/internal/commands"
)

func main() {
	// .env is optional; SERENE_* variables override file config either way.
	_ = godotenv.Load()

	commands.Execute()
}
