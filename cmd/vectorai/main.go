// Package main is the entry point for the VECTOR AI backend server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vectorai",
	Short: "VECTOR AI career-guidance backend",
	Long: "VECTOR AI matches job seekers to postings: it interviews seekers, analyzes profiles with " +
		"LLM providers, canonicalizes posting skills and serves match percentages over a JSON API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
