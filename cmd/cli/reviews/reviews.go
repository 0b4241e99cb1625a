package reviews

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bookshelf-app/bookshelf/cmd/cli/config"
	"github.com/bookshelf-app/bookshelf/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// Init Reviews
// ==========================
func InitReviews(rootCmd *cobra.Command) {

	reviewsCmd := &cobra.Command{
		Use:   "reviews",
		Short: "Browse and write reviews",
	}

	reviewsCmd.AddCommand(
		listReviewsCmd(),
		addReviewCmd(),
		likeReviewCmd(),
	)

	rootCmd.AddCommand(reviewsCmd)
}

type review struct {
	ID         int64  `json:"id"`
	Author     int64  `json:"author"`
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
	LikesCount int    `json:"likesCount"`
}

// ==========================
// LIST
// ==========================
func listReviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [book-id]",
		Short: "List reviews for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/api/books/" + args[0] + "/reviews")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			var out struct {
				Data []review `json:"data"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Data))
			for _, r := range out.Data {
				rows = append(rows, []interface{}{r.ID, r.Rating, r.Review, r.LikesCount})
			}
			output.RenderTable([]string{"ID", "Rating", "Review", "Likes"}, rows)
			return nil
		},
	}
}

// ==========================
// ADD
// ==========================
func addReviewCmd() *cobra.Command {

	var rating int
	var text string

	cmd := &cobra.Command{
		Use:   "add [book-id]",
		Short: "Review a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]interface{}{
				"rating": rating,
				"review": text,
			}
			body, _ := json.Marshal(payload)

			req, err := http.NewRequest("POST",
				config.APIURL()+"/api/books/"+args[0]+"/reviews", bytes.NewBuffer(body))
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

			fmt.Println("Review added")
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 5, "rating from 1 to 5")
	cmd.Flags().StringVar(&text, "text", "", "review text")

	return cmd
}

// ==========================
// LIKE
// ==========================
func likeReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [review-id]",
		Short: "Like a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, err := http.NewRequest("POST",
				config.APIURL()+"/api/reviews/"+args[0]+"/like", nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			var out struct {
				Data struct {
					LikesCount int `json:"likesCount"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			fmt.Printf("Liked. The review now has %d likes.\n", out.Data.LikesCount)
			return nil
		},
	}
}
