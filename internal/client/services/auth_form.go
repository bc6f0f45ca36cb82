package services

import (
	"context"
	"strings"
	"sync"
)

// AuthForm is the login / sign-up dialog state.
type AuthForm struct {
	store SessionStore

	mu       sync.Mutex
	email    string
	password string
	signUp   bool
	pending  bool
}

func NewAuthForm(store SessionStore) *AuthForm {
	return &AuthForm{store: store}
}

func (f *AuthForm) SetEmail(email string) {
	f.mu.Lock()
	f.email = strings.TrimSpace(email)
	f.mu.Unlock()
}

func (f *AuthForm) SetPassword(password string) {
	f.mu.Lock()
	f.password = password
	f.mu.Unlock()
}

// SetSignUp selects sign-up (true) or sign-in (false) mode.
func (f *AuthForm) SetSignUp(v bool) {
	f.mu.Lock()
	f.signUp = v
	f.mu.Unlock()
}

func (f *AuthForm) Toggle() {
	f.mu.Lock()
	f.signUp = !f.signUp
	f.mu.Unlock()
}

func (f *AuthForm) IsSignUp() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signUp
}

func (f *AuthForm) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Submit signs in or up with the entered credentials. closed reports
// whether the dialog should close; on error it stays open and the error
// carries the service message.
func (f *AuthForm) Submit(ctx context.Context) (closed bool, err error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return false, ErrAuthPending
	}
	f.pending = true
	email, password, signUp := f.email, f.password, f.signUp
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.pending = false
		f.mu.Unlock()
	}()

	if signUp {
		err = f.store.SignUp(ctx, email, password)
	} else {
		err = f.store.SignIn(ctx, email, password)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
