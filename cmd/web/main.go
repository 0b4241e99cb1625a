package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "bookshelf_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "BOOKSHELF_WEB_PORT"
	envAPIURL   = "BOOKSHELF_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public: browsing needs no account, only writing does.
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/logout", logout)
	r.Get("/", redirectBooks)
	r.Get("/books", booksList(apiBase))
	r.Get("/books/{id}", bookDetail(apiBase))

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func redirectBooks(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/books", http.StatusFound)
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/books", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", nil)
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Email and password are required"})
			return
		}

		body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
		req, _ := http.NewRequest("POST", apiBase+"/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			var errResp struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Message
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "login.html", map[string]string{"Error": msg})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.Token,
			Path:     "/",
			MaxAge:   24 * 3600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/books", http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// apiGet performs GET to the API, attaching the bearer token when present.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("GET", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type bookView struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
}

type reviewView struct {
	ID         int64  `json:"id"`
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
	LikesCount int    `json:"likesCount"`
}

func booksList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := strings.TrimSpace(r.URL.Query().Get("search"))
		path := "/api/books?limit=50"
		if search != "" {
			path += "&search=" + url.QueryEscape(search)
		}

		data, status, err := apiGet(apiBase, path, "")
		if err != nil {
			renderTemplate(w, "books.html", map[string]interface{}{"Error": err.Error(), "SearchQuery": search})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "books.html", map[string]interface{}{"Error": "API error: " + string(data), "SearchQuery": search})
			return
		}

		var out struct {
			Data []bookView `json:"data"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "books.html", map[string]interface{}{"Error": "Invalid books response", "SearchQuery": search})
			return
		}

		renderTemplate(w, "books.html", map[string]interface{}{
			"Books":       out.Data,
			"SearchQuery": search,
			"LoggedIn":    cookieToken(r) != "",
		})
	}
}

func bookDetail(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, status, err := apiGet(apiBase, "/api/books/"+id, "")
		if err != nil {
			renderTemplate(w, "book_detail.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusNotFound {
			renderTemplate(w, "book_detail.html", map[string]interface{}{"Error": "Book not found"})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "book_detail.html", map[string]interface{}{"Error": "API error: " + string(data)})
			return
		}

		var bookOut struct {
			Data bookView `json:"data"`
		}
		if err := json.Unmarshal(data, &bookOut); err != nil {
			renderTemplate(w, "book_detail.html", map[string]interface{}{"Error": "Invalid book response"})
			return
		}

		var reviews []reviewView
		if data, status, err := apiGet(apiBase, "/api/books/"+id+"/reviews", ""); err == nil && status == http.StatusOK {
			var reviewsOut struct {
				Data []reviewView `json:"data"`
			}
			if err := json.Unmarshal(data, &reviewsOut); err == nil {
				reviews = reviewsOut.Data
			}
		}

		renderTemplate(w, "book_detail.html", map[string]interface{}{
			"Book":    bookOut.Data,
			"Reviews": reviews,
		})
	}
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if name == "login.html" {
		t := template.Must(template.New("").Parse(string(content)))
		_ = t.ExecuteTemplate(w, "login", data)
		return
	}

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}
