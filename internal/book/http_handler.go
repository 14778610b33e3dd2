package book

import (
	"net/http"

	"bookstore/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type bookResponse struct {
	Book Book `json:"book"`
}

type booksResponse struct {
	Books []Book `json:"books"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Routes mounts the book endpoints on r.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Post("/", httpx.Handle(h.Create))
	r.Get("/", httpx.Handle(h.List))
	r.Get("/{isbn}", httpx.Handle(h.Get))
	r.Put("/{isbn}", httpx.Handle(h.Update))
	r.Delete("/{isbn}", httpx.Handle(h.Delete))
}

// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} bookResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) error {
	in, err := DecodeCreate(r.Body)
	if err != nil {
		return err
	}
	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, bookResponse{Book: b})
	return nil
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) error {
	books, err := h.service.List(r.Context())
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, booksResponse{Books: books})
	return nil
}

// Get handles GET /books/{isbn}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) error {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: b})
	return nil
}

// @Summary Update book
// @Description Replaces every mutable field; isbn cannot be changed.
// @Tags books
// @Accept json
// @Produce json
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} bookResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{isbn} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) error {
	f, err := DecodeUpdate(r.Body)
	if err != nil {
		return err
	}
	b, err := h.service.Update(r.Context(), chi.URLParam(r, "isbn"), f)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: b})
	return nil
}

// Delete handles DELETE /books/{isbn}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "isbn")); err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Book deleted"})
	return nil
}
