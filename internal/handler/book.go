package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/service"
)

// PhotoSaver stores an uploaded photo and returns its reference;
// storage.DiskStore implements it.
type PhotoSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// BookHandler serves the /book endpoints.
type BookHandler struct {
	Catalog  *service.CatalogService
	Photos   PhotoSaver
	MaxPhoto int64 // bytes; 0 disables the check
}

func NewBookHandler(catalog *service.CatalogService, photos PhotoSaver, maxPhoto int64) *BookHandler {
	return &BookHandler{Catalog: catalog, Photos: photos, MaxPhoto: maxPhoto}
}

// Form field names shared by create and update.
const (
	fieldName         = "name"
	fieldAuthor       = "author"
	fieldLocation     = "location"
	fieldDescription  = "description"
	fieldContactPhone = "contactPhone"
	fieldPhoto        = "photo"
)

// List returns all books, optionally filtered by ?name= and ?author=.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.Catalog.ListBooks(ctx, model.BookFilter{
		Name:   c.QueryParam("name"),
		Author: c.QueryParam("author"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) MyBooks(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.Catalog.ListByOwner(ctx, caller(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// MyReservations lists the books the caller has reserved.
func (h *BookHandler) MyReservations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Catalog.ListReservationsForUser(ctx, caller(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid book id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Catalog.GetBookDetails(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create lists a new book from a multipart form with a required photo.
func (h *BookHandler) Create(c echo.Context) error {
	photo, err := h.savePhoto(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Catalog.CreateBook(ctx, model.BookInput{
		Name:         c.FormValue(fieldName),
		Author:       c.FormValue(fieldAuthor),
		Location:     c.FormValue(fieldLocation),
		Description:  c.FormValue(fieldDescription),
		ContactPhone: c.FormValue(fieldContactPhone),
		Photo:        photo,
	}, caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update applies the fields present in the form; a new photo replaces the
// old one.
func (h *BookHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid book id")
	}
	form, err := c.FormParams()
	if err != nil {
		return badRequest(c, "Invalid form data")
	}
	patch := model.BookPatch{
		Name:         present(form, fieldName),
		Author:       present(form, fieldAuthor),
		Location:     present(form, fieldLocation),
		Description:  present(form, fieldDescription),
		ContactPhone: present(form, fieldContactPhone),
	}
	photo, err := h.savePhoto(c)
	if err != nil {
		return fail(c, err)
	}
	if photo != "" {
		patch.Photo = &photo
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Catalog.UpdateBook(ctx, id, patch, caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid book id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Catalog.DeleteBook(ctx, id, caller(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully"})
}

// savePhoto stores the "photo" part if present.  An absent photo yields "".
func (h *BookHandler) savePhoto(c echo.Context) (string, error) {
	fh, err := c.FormFile(fieldPhoto)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", &service.Error{Kind: service.KindValidation, Message: "Invalid photo upload", Err: err}
	}
	if h.MaxPhoto > 0 && fh.Size > h.MaxPhoto {
		return "", &service.Error{Kind: service.KindValidation, Message: fmt.Sprintf("Photo exceeds %d bytes", h.MaxPhoto)}
	}
	ref, err := h.Photos.Save(fh)
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return ref, nil
}

// present returns a pointer to the first value of key, or nil when the form
// does not carry it.
func present(form map[string][]string, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}
