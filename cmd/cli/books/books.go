package books

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookshelf-app/bookshelf/cmd/cli/config"
	"github.com/bookshelf-app/bookshelf/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// Init Books
// ==========================
func InitBooks(rootCmd *cobra.Command) {

	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage books",
	}

	booksCmd.AddCommand(
		listBooksCmd(),
		addBookCmd(),
		deleteBookCmd(),
	)

	rootCmd.AddCommand(booksCmd)
}

type book struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn"`
	Genres        []string `json:"genres"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
}

// ==========================
// LIST
// ==========================
func listBooksCmd() *cobra.Command {
	var search string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if search != "" {
				q.Set("search", search)
			}

			resp, err := http.Get(config.APIURL() + "/api/books?" + q.Encode())
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			var out struct {
				Data []book `json:"data"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Data))
			for _, b := range out.Data {
				rows = append(rows, []interface{}{
					b.ID, b.Title, b.Author,
					fmt.Sprintf("%.1f", b.AverageRating), b.TotalReviews,
				})
			}
			output.RenderTable([]string{"ID", "Title", "Author", "Rating", "Reviews"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by title or author")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of books to list")

	return cmd
}

// ==========================
// ADD
// ==========================
func addBookCmd() *cobra.Command {

	var title, author, isbn, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]string{
				"title":       title,
				"author":      author,
				"isbn":        isbn,
				"description": description,
			}
			body, _ := json.Marshal(payload)

			req, err := http.NewRequest("POST", config.APIURL()+"/api/books", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			}

			var out struct {
				Data book `json:"data"`
			}
			if err := json.Unmarshal(respBody, &out); err != nil {
				return err
			}

			fmt.Printf("Added %q (id %d)\n", out.Data.Title, out.Data.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&description, "description", "", "book description")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a book you added",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, err := http.NewRequest("DELETE", config.APIURL()+"/api/books/"+args[0], nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Println("Book deleted")
			return nil
		},
	}
}
