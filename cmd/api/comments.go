package main

import (
	"errors"
	"net/http"

	"moviereview/internal/comments"
	"moviereview/internal/domain/movies"

	"github.com/go-chi/chi/v5"
)

// CommentPayload is shared by add and edit. Range and length checks live in
// the comment engine so both paths reject the same input.
type CommentPayload struct {
	Text   string `json:"text" validate:"required"`
	Rating *int   `json:"rating" validate:"required"`
}

func readCommentPayload(w http.ResponseWriter, r *http.Request) (CommentPayload, error) {
	var payload CommentPayload
	if err := readJSON(w, r, &payload); err != nil {
		return payload, err
	}
	if err := Validate.Struct(payload); err != nil {
		return payload, errors.New("text and rating are required")
	}
	return payload, nil
}

// listCommentsHandler godoc
//
//	@Summary		List comments of a movie
//	@Tags			comments
//	@Produce		json
//	@Param			movieID	path		string	true	"Movie ID"
//	@Success		200		{array}		movies.Comment
//	@Failure		404		{object}	error
//	@Router			/movies/{movieID}/comments [get]
func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.comments.ListComments(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addCommentHandler godoc
//
//	@Summary		Comment on a movie
//	@Description	Adds a rated comment at the head of the movie's comments and returns the movie
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			movieID	path		string			true	"Movie ID"
//	@Param			payload	body		CommentPayload	true	"Comment"
//	@Success		201		{object}	movies.Movie
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies/{movieID}/comments [post]
func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := getPrincipal(r)

	payload, err := readCommentPayload(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.comments.AddComment(r.Context(), chi.URLParam(r, "movieID"), principal, payload.Text, *payload.Rating)
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, movie); err != nil {
		app.internalServerError(w, r, err)
	}
}

// editCommentHandler godoc
//
//	@Summary		Edit a comment
//	@Description	Only the author may edit a comment
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			movieID		path		string			true	"Movie ID"
//	@Param			commentID	path		string			true	"Comment ID"
//	@Param			payload		body		CommentPayload	true	"Comment"
//	@Success		200			{object}	movies.Movie
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies/{movieID}/comments/{commentID} [put]
func (app *application) editCommentHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := getPrincipal(r)

	payload, err := readCommentPayload(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.comments.EditComment(
		r.Context(),
		chi.URLParam(r, "movieID"),
		chi.URLParam(r, "commentID"),
		principal,
		payload.Text,
		*payload.Rating,
	)
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, movie); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCommentHandler godoc
//
//	@Summary		Delete a comment
//	@Description	The author or any admin may delete a comment
//	@Tags			comments
//	@Produce		json
//	@Param			movieID		path		string	true	"Movie ID"
//	@Param			commentID	path		string	true	"Comment ID"
//	@Success		200			{object}	movies.Movie
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/movies/{movieID}/comments/{commentID} [delete]
func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := getPrincipal(r)

	movie, err := app.comments.DeleteComment(
		r.Context(),
		chi.URLParam(r, "movieID"),
		chi.URLParam(r, "commentID"),
		principal,
	)
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	app.logger.Infow("comment deleted", "movie_id", movie.ID, "by", principal.ID, "role", principal.Role())

	if err := app.jsonResponse(w, http.StatusOK, movie); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) commentErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, comments.ErrValidation):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, comments.ErrUnauthenticated):
		app.unauthorizedErrorResponse(w, r, err)
	case errors.Is(err, comments.ErrForbidden):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, movies.ErrNotFound), errors.Is(err, movies.ErrCommentNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
