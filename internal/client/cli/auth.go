package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/til/internal/client/services"
	"github.com/dmitrijs2005/til/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for email and password and signs in. A failure prints the
// service's message; the session stays as it was.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, false)
}

// Register prompts for email and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, true)
}

func (a *App) authenticate(ctx context.Context, signUp bool) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := services.NewAuthForm(a.session)
	form.SetSignUp(signUp)
	form.SetEmail(email)
	form.SetPassword(string(password))

	closed, err := form.Submit(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	if !closed {
		return nil
	}

	switch cur := a.session.Current(); {
	case cur != nil:
		fmt.Fprintf(a.out, "Welcome, %s\n", cur.User.Email)
	case signUp:
		fmt.Fprintln(a.out, "Account created. Confirm your email, then login.")
	}
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	a.printHeader()
	return nil
}
