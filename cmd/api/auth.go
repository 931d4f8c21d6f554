package main

import (
	"errors"
	"net/http"
	"strings"

	"moviereview/internal/domain/admins"
	"moviereview/internal/domain/users"
)

// errInvalidCredentials is returned for unknown logins and wrong passwords alike.
var errInvalidCredentials = errors.New("Invalid credentials")

// ErrorBadRequestResponse represents the standard error format for bad request API responses.
//
//	@name			ErrorBadRequestResponse
//	@description	Standard error response format returned by all bad request API endpoints
type ErrorBadRequestResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"It show error from err.Error()"`
	Status  int    `json:"status" example:"400"`
}

type RegisterUserPayload struct {
	Username string `json:"username" validate:"required,notblank,excludesall=@,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type UserWithToken struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Description	Creates a user account and returns it together with a token
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload		true	"User credentials"
//	@Success		201		{object}	UserWithToken			"User registered"
//	@Failure		400		{object}	ErrorBadRequestResponse	"Bad request"
//	@Failure		500		{object}	error
//	@Router			/users/register [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &users.User{
		Username: strings.TrimSpace(payload.Username),
		Email:    strings.TrimSpace(payload.Email),
	}
	// hash the user password.
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateEmail), errors.Is(err, users.ErrDuplicateUsername):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	token, err := app.authenticator.GenerateUserToken(user.ID, user.Username)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user registered", "user_id", user.ID)

	if err := app.jsonResponse(w, http.StatusCreated, UserWithToken{User: user, Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// LoginUserPayload accepts the login under loginId, username or email.
type LoginUserPayload struct {
	LoginID  string `json:"loginId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required,max=72"`
}

func (p LoginUserPayload) login() string {
	for _, v := range []string{p.LoginID, p.Username, p.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// loginUserHandler godoc
//
//	@Summary		Login to get a token
//	@Description	Exchanges a username or email and password for a one day token
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginUserPayload	true	"User credentials"
//	@Success		200		{object}	UserWithToken
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/users/login [post]
func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	login := payload.login()
	if login == "" {
		app.badRequestResponse(w, r, errors.New("loginId and password are required"))
		return
	}

	user, err := app.store.Users.GetByLogin(r.Context(), login)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, errInvalidCredentials)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !user.Password.Compare(payload.Password) {
		app.unauthorizedErrorResponse(w, r, errInvalidCredentials)
		return
	}

	token, err := app.authenticator.GenerateUserToken(user.ID, user.Username)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, UserWithToken{User: user, Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type LoginAdminPayload struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required,max=72"`
}

type AdminWithToken struct {
	Admin *admins.Admin `json:"admin"`
	Token string        `json:"token"`
}

// loginAdminHandler godoc
//
//	@Summary		Admin login
//	@Description	Exchanges an admin login id and password for a one day admin token
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginAdminPayload	true	"Admin credentials"
//	@Success		200		{object}	AdminWithToken
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/admin/login [post]
func (app *application) loginAdminHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginAdminPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New("username and password are required"))
		return
	}

	admin, err := app.store.Admins.GetByLoginID(r.Context(), strings.TrimSpace(payload.Username))
	if err != nil {
		switch {
		case errors.Is(err, admins.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, errInvalidCredentials)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !admin.Password.Compare(payload.Password) {
		app.unauthorizedErrorResponse(w, r, errInvalidCredentials)
		return
	}

	token, err := app.authenticator.GenerateAdminToken(admin.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("admin login", "admin_id", admin.ID)

	if err := app.jsonResponse(w, http.StatusOK, AdminWithToken{Admin: admin, Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}
