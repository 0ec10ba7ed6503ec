package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// checkBlogToken gates blog mutations with a bearer token, separate
// from the admin API keys.
func (s *HTTPServer) checkBlogToken(r *http.Request) bool {
	token := s.cfg.Blog.Token
	if token == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	bearer := strings.TrimPrefix(header, "Bearer ")
	if bearer == header {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(token)) == 1
}

func (s *HTTPServer) handleBlogs(w http.ResponseWriter, r *http.Request) {
	if s.blogs == nil {
		writeError(w, http.StatusServiceUnavailable, "blog storage is not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		page, pageSize := queryPage(r)
		blogs, total, err := s.blogs.List(r.Context(), page, pageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"blogs":       blogs,
			"total":       total,
			"total_pages": totalPages(int(total), pageSize),
			"page":        page,
			"page_size":   pageSize,
		})
	case http.MethodPost:
		if !s.checkBlogToken(r) {
			writeError(w, http.StatusUnauthorized, "invalid blog token")
			return
		}

		var blog models.Blog
		if err := decodeJSON(r, &blog); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if blog.Title == "" || blog.Author == "" || blog.Content == "" {
			writeError(w, http.StatusBadRequest, "title, author and content are required")
			return
		}

		if err := s.blogs.Create(r.Context(), &blog); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, blog)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBlogByID(w http.ResponseWriter, r *http.Request) {
	if s.blogs == nil {
		writeError(w, http.StatusServiceUnavailable, "blog storage is not configured")
		return
	}
	tail := strings.TrimPrefix(r.URL.Path, "/api/v1/blogs/")
	parts := strings.Split(strings.Trim(tail, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleBlogOps(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "like":
		s.handleBlogLike(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleBlogOps(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		blog, err := s.blogs.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, blog)
	case http.MethodPatch:
		if !s.checkBlogToken(r) {
			writeError(w, http.StatusUnauthorized, "invalid blog token")
			return
		}

		var updates models.Blog
		if err := decodeJSON(r, &updates); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		blog, err := s.blogs.Update(r.Context(), id, &updates)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, blog)
	case http.MethodDelete:
		if !s.checkBlogToken(r) {
			writeError(w, http.StatusUnauthorized, "invalid blog token")
			return
		}

		if err := s.blogs.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBlogLike(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	likes, err := s.blogs.Like(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likes": likes})
}
