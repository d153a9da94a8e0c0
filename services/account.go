package services

import (
	"context"

	"quickcompare/api"
	"quickcompare/models"
	"quickcompare/storage"
	"quickcompare/utils"
)

const (
	profileNameKey  = "quickcompare:profile:name"
	profileEmailKey = "quickcompare:profile:email"
)

// AuthAPI is the auth surface of the comparison backend. api.Client
// satisfies it.
type AuthAPI interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (models.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (models.AuthResponse, error)
}

// AccountService wraps the backend's signup/signin endpoints and keeps
// the basic profile fields in local storage. There are no sessions or
// tokens; the backend's {status, message} envelope is all there is.
type AccountService struct {
	api    AuthAPI
	store  storage.KVStore
	logger *utils.Logger
}

func NewAccountService(authAPI AuthAPI, store storage.KVStore, logger *utils.Logger) *AccountService {
	return &AccountService{api: authAPI, store: store, logger: logger}
}

// SignUp registers an account; on success the profile fields are
// persisted locally.
func (a *AccountService) SignUp(ctx context.Context, name, email, password string) (models.AuthResponse, error) {
	resp, err := a.api.SignUp(ctx, api.SignUpRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return models.AuthResponse{}, err
	}
	if resp.Success() {
		a.persistProfile(ctx, name, email)
	}
	return resp, nil
}

// SignIn authenticates; on success the email is persisted locally.
func (a *AccountService) SignIn(ctx context.Context, email, password string) (models.AuthResponse, error) {
	resp, err := a.api.SignIn(ctx, email, password)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if resp.Success() {
		a.persistProfile(ctx, "", email)
	}
	return resp, nil
}

// Profile returns the locally stored name and email, empty when absent.
func (a *AccountService) Profile(ctx context.Context) (name, email string) {
	name, _, _ = a.store.Get(ctx, profileNameKey)
	email, _, _ = a.store.Get(ctx, profileEmailKey)
	return name, email
}

func (a *AccountService) persistProfile(ctx context.Context, name, email string) {
	if name != "" {
		if err := a.store.Set(ctx, profileNameKey, name); err != nil {
			a.logger.Warn("[account] persist name failed: %v", err)
		}
	}
	if email != "" {
		if err := a.store.Set(ctx, profileEmailKey, email); err != nil {
			a.logger.Warn("[account] persist email failed: %v", err)
		}
	}
}
