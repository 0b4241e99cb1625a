package main

import (
	"fmt"
	"os"

	"github.com/bookshelf-app/bookshelf/cmd/cli/auth"
	"github.com/bookshelf-app/bookshelf/cmd/cli/books"
	"github.com/bookshelf-app/bookshelf/cmd/cli/reviews"
	"github.com/bookshelf-app/bookshelf/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	books.InitBooks(rootCmd)
	reviews.InitReviews(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
