package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const maxPosterSize = 10 << 20 // 10MB

var errUploadsDisabled = errors.New("poster uploads are not configured")

// uploadPosterHandler godoc
//
//	@Summary		Upload a movie poster
//	@Description	Stores an image and returns its URL for use as posterUrl when adding a movie
//	@Tags			movies
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			poster	formData	file	true	"Poster image"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		503		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies/poster [post]
func (app *application) uploadPosterHandler(w http.ResponseWriter, r *http.Request) {
	if app.media == nil {
		app.serviceUnavailableResponse(w, r, errUploadsDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPosterSize+1024)
	if err := r.ParseMultipartForm(maxPosterSize); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unable to parse form, poster must be at most 10MB: %w", err))
		return
	}

	file, _, err := r.FormFile("poster")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("poster file is required: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		app.badRequestResponse(w, r, fmt.Errorf("poster must be an image, got %s", mtype.String()))
		return
	}

	url, err := app.media.UploadPoster(r.Context(), bytes.NewReader(data))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("poster uploaded", "url", url, "mime", mtype.String())

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"posterUrl": url}); err != nil {
		app.internalServerError(w, r, err)
	}
}
