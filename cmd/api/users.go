package main

import (
	"errors"
	"net/http"

	"moviereview/internal/domain/admins"
	"moviereview/internal/domain/users"
)

// getCurrentUserHandler godoc
//
//	@Summary		Get current user profile
//	@Description	Returns the authenticated user, or the admin profile for admin tokens
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User	"Current user data"
//	@Failure		400	{object}	error		"Invalid or expired token"
//	@Failure		403	{object}	error		"Token missing"
//	@Failure		500	{object}	error		"Internal server error"
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r)
	if !ok {
		app.forbiddenResponse(w, r, errTokenMissing)
		return
	}

	var (
		profile any
		err     error
	)
	if principal.IsAdmin() {
		profile, err = app.store.Admins.GetByID(r.Context(), principal.ID)
	} else {
		profile, err = app.store.Users.GetByID(r.Context(), principal.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound), errors.Is(err, admins.ErrNotFound):
			app.notFoundResponse(w, r, errors.New("user not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, profile); err != nil {
		app.internalServerError(w, r, err)
	}
}
