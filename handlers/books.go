package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/kevinaaaquil/digitallibrary/service"
)

// CoverStorage holds uploaded cover images. *service.S3Service implements it.
type CoverStorage interface {
	UploadCover(ctx context.Context, bookID, originalFilename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type BooksHandler struct {
	Catalog *catalog.Service
	// Covers is nil when no bucket is configured; cover upload then answers 503.
	Covers   CoverStorage
	MaxBytes int64
}

type BookRequest struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author"`
	PublicationDate string   `json:"publication_date"`
	Publisher       string   `json:"publisher"`
	Summary         string   `json:"summary"`
	CoverImage      string   `json:"cover_image"`
	Availability    string   `json:"availability" validate:"required,availability"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
}

func (req BookRequest) input() catalog.BookInput {
	return catalog.BookInput{
		Title:           strings.TrimSpace(req.Title),
		Author:          req.Author,
		PublicationDate: req.PublicationDate,
		Publisher:       req.Publisher,
		Summary:         req.Summary,
		CoverImage:      req.CoverImage,
		Availability:    req.Availability,
		Categories:      req.Categories,
		Tags:            req.Tags,
	}
}

type AddWithAIRequest struct {
	Title        string `json:"title" validate:"required"`
	Availability string `json:"availability" validate:"required,availability"`
}

type AddWithAIResponse struct {
	Success bool            `json:"success"`
	Book    models.BookView `json:"book"`
	Info    models.BookInfo `json:"bookInfo"`
}

// setCoverURL points a stored cover at the cover endpoint so clients can use it as an img src.
func setCoverURL(view *models.BookView) {
	if service.IsCoverKey(view.CoverImage) {
		view.CoverImage = "/api/books/" + view.ID.Hex() + "/cover"
	}
}

func setCoverURLs(views []models.BookView) {
	for i := range views {
		setCoverURL(&views[i])
	}
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.Books(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURLs(books)
	writeJSON(w, http.StatusOK, books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.Catalog.Book(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURL(book)
	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	var req BookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.Catalog.CreateBook(r.Context(), req.input(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURL(book)
	writeJSON(w, http.StatusCreated, book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req BookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.Catalog.UpdateBook(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURL(book)
	writeJSON(w, http.StatusOK, book)
}

// Delete removes the book and, if it had an uploaded cover, the cover object.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.Catalog.DeleteBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.deleteCover(r.Context(), book.CoverImage)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BooksHandler) deleteCover(ctx context.Context, cover string) {
	if h.Covers == nil || !service.IsCoverKey(cover) {
		return
	}
	if err := h.Covers.Delete(ctx, cover); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", cover).Msg("delete cover object")
	}
}

func (h *BooksHandler) AddWithAI(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	var req AddWithAIRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	added, err := h.Catalog.AddWithAI(r.Context(), strings.TrimSpace(req.Title), req.Availability, sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURL(&added.Book)
	writeJSON(w, http.StatusCreated, AddWithAIResponse{Success: true, Book: added.Book, Info: added.Info})
}

// UploadCover stores a multipart "file" image and makes it the book's cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Covers == nil {
		writeMessage(w, http.StatusServiceUnavailable, "upload not configured (missing S3)")
		return
	}
	book, err := h.Catalog.Book(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeMessage(w, http.StatusBadRequest, "only images are allowed")
		return
	}

	key, err := h.Covers.UploadCover(r.Context(), id.Hex(), header.Filename, file, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.SetCover(r.Context(), id, key); err != nil {
		h.deleteCover(r.Context(), key)
		writeError(w, r, err)
		return
	}
	h.deleteCover(r.Context(), book.CoverImage)
	logging.Ctx(r.Context()).Info().Str("book", id.Hex()).Str("key", key).Msg("cover uploaded")

	book, err = h.Catalog.Book(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCoverURL(book)
	writeJSON(w, http.StatusOK, book)
}

// Cover streams an uploaded cover, or redirects to a cover that is an external URL.
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.Catalog.Book(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cover := book.CoverImage
	if cover == "" {
		writeMessage(w, http.StatusNotFound, "no cover")
		return
	}
	if !service.IsCoverKey(cover) {
		http.Redirect(w, r, cover, http.StatusFound)
		return
	}
	if h.Covers == nil {
		writeMessage(w, http.StatusNotFound, "no cover")
		return
	}
	body, contentType, err := h.Covers.GetObject(r.Context(), cover)
	if errors.Is(err, service.ErrObjectNotFound) {
		writeMessage(w, http.StatusNotFound, "no cover")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("key", cover).Msg("stream cover")
	}
}
