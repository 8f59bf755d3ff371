package handlers

import (
	"net/http"
	"strings"

	"github.com/kevinaaaquil/digitallibrary/catalog"
)

// Search handles GET /api/search?query=...&nlp=true&availability=...&categories=...
// availability and categories may repeat.
func (h *BooksHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := h.Catalog.Search(r.Context(), catalog.SearchQuery{
		Query:        strings.TrimSpace(q.Get("query")),
		NLP:          q.Get("nlp") == "true",
		Availability: nonBlank(q["availability"]),
		Categories:   nonBlank(q["categories"]),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURLs(books)
	writeJSON(w, http.StatusOK, books)
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
