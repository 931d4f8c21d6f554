package main

import (
	"errors"
	"net/http"

	"moviereview/internal/catalog"
	"moviereview/internal/domain/movies"
	"moviereview/internal/media"

	"github.com/go-chi/chi/v5"
)

type CreateMoviePayload struct {
	Title       string   `json:"title" validate:"required,notblank,max=255"`
	Genre       string   `json:"genre" validate:"required,notblank,max=100"`
	ReleaseDate string   `json:"releaseDate" validate:"required,releasedate"`
	Description string   `json:"description" validate:"required,notblank"`
	PosterURL   string   `json:"posterUrl" validate:"required,notblank"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0"`
}

// listMoviesHandler godoc
//
//	@Summary		List movies
//	@Description	Returns every movie with its comments, newest first
//	@Tags			movies
//	@Produce		json
//	@Success		200	{array}		movies.Movie
//	@Failure		500	{object}	error
//	@Router			/movies [get]
func (app *application) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.catalog.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMovieHandler godoc
//
//	@Summary		Get a movie
//	@Tags			movies
//	@Produce		json
//	@Param			movieID	path		string	true	"Movie ID"
//	@Success		200		{object}	movies.Movie
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/movies/{movieID} [get]
func (app *application) getMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, err := app.catalog.Get(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		app.movieErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, movie); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createMovieHandler godoc
//
//	@Summary		Add a movie
//	@Description	Adds a movie to the catalog. Rating is optional and defaults to 0.
//	@Tags			movies
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateMoviePayload	true	"Movie"
//	@Success		201		{object}	movies.Movie
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies [post]
func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errTokenMissing)
		return
	}

	var payload CreateMoviePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	releaseDate, err := parseReleaseDate(payload.ReleaseDate)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.catalog.Create(r.Context(), catalog.NewMovie{
		Title:       payload.Title,
		Genre:       payload.Genre,
		ReleaseDate: releaseDate,
		Description: payload.Description,
		PosterURL:   payload.PosterURL,
		Rating:      payload.Rating,
	}, principal)
	if err != nil {
		app.movieErrorResponse(w, r, err)
		return
	}

	app.logger.Infow("movie created", "movie_id", movie.ID, "admin_id", principal.ID)

	if err := app.jsonResponse(w, http.StatusCreated, movie); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMovieHandler godoc
//
//	@Summary		Delete a movie
//	@Description	Deletes a movie together with its comments
//	@Tags			movies
//	@Produce		json
//	@Param			movieID	path		string	true	"Movie ID"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies/{movieID} [delete]
func (app *application) deleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errTokenMissing)
		return
	}

	movie, err := app.catalog.Delete(r.Context(), chi.URLParam(r, "movieID"), principal)
	if err != nil {
		app.movieErrorResponse(w, r, err)
		return
	}

	// poster cleanup is best effort, the movie is already gone
	if app.media != nil && movie.PosterURL != "" {
		if err := app.media.DeletePoster(r.Context(), movie.PosterURL); err != nil && !errors.Is(err, media.ErrNotHosted) {
			app.logger.Warnw("poster cleanup failed", "movie_id", movie.ID, "error", err.Error())
		}
	}

	app.logger.Infow("movie deleted", "movie_id", movie.ID, "comments", len(movie.Comments))

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "Movie deleted successfully"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) movieErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, catalog.ErrForbidden):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, movies.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
