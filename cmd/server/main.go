// Command server runs the book-lending API and its maintenance tasks.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "booklend",
		Short:         "Book lending marketplace API",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is fine; real deployments use the environment
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Printf("load .env: %v", err)
			}
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd(), newConsumeCmd())
	return root
}
