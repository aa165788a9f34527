package main

import (
	"github.com/insightdesk/insightdesk-be/cmd"
	"github.com/joho/godotenv"
)

func main() {
	cmd.Execute()
}

func init() {
	// Missing .env is fine in deployed environments where the variables are
	// set directly.
	godotenv.Load()
}
