package api

import (
	"context"
	"net/http"

	"schoolcomm/client/internal/models"
)

type Auth struct {
	Client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

// LoginResult is what the session store needs to open a session.
type LoginResult struct {
	Token string
	User  models.User
}

// Login exchanges credentials for a bearer token and the current user.
func (a Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	res, err := SendJSON[loginResponse](ctx, a.Client, http.MethodPost, "/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: res.Token, User: mapUser(res.User)}, nil
}

// Logout invalidates the token server-side. The caller still clears the
// session store.
func (a Auth) Logout(ctx context.Context) (string, error) {
	res, err := SendJSON[struct {
		Message string `json:"message"`
	}](ctx, a.Client, http.MethodPost, "/logout", nil)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
