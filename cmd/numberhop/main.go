package main

import "github.com/joho/godotenv"

func main() {
	// Local overrides for development; a missing .env file is fine.
	_ = godotenv.Load()

	Execute()
}
