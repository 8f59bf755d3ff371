package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const googleBooksBase = "https://www.googleapis.com/books/v1/volumes"

// volumesResp is the part of GET /volumes?q=... that cover lookup needs.
type volumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string `json:"title"`
			ImageLinks struct {
				SmallThumbnail string `json:"smallThumbnail"`
				Thumbnail      string `json:"thumbnail"`
			} `json:"imageLinks"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// CoverLookup finds cover images for a title through the Google Books volumes API.
type CoverLookup struct {
	BaseURL string
	Client  *http.Client
}

// NewCoverLookup has a short timeout so a slow lookup doesn't hold up adding a book.
func NewCoverLookup() *CoverLookup {
	return &CoverLookup{
		BaseURL: googleBooksBase,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// FindCover returns a cover URL for the first volume matching title and author, or "" if
// there is none. Open Library covers by ISBN are preferred; Google's own thumbnails often
// sit behind a captcha.
func (c *CoverLookup) FindCover(ctx context.Context, title, author string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	q := "intitle:" + title
	if a := strings.TrimSpace(author); a != "" {
		q += " inauthor:" + a
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data volumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return "", nil
	}
	vi := data.Items[0].VolumeInfo
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			return openLibraryCoverURL(id.Identifier, "L"), nil
		}
	}
	thumb := vi.ImageLinks.Thumbnail
	if thumb == "" {
		thumb = vi.ImageLinks.SmallThumbnail
	}
	return strings.Replace(thumb, "http://", "https://", 1), nil
}

// openLibraryCoverURL returns a direct cover image URL by ISBN. Size: S, M or L.
func openLibraryCoverURL(isbn, size string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if clean == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(clean) + "-" + size + ".jpg"
}
