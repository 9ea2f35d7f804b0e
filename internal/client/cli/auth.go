package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dustin/go-humanize"
)

func (a *App) login(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errors.New("wrong email or password")
		}
		return err
	}
	success(fmt.Sprintf("signed in as %s (%s)", u.Name(), u.Role))
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	success("signed out")
	return nil
}

func (a *App) forgot(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.ForgotPassword(ctx, email); err != nil {
		return err
	}
	success("if the address is registered, a reset link is on its way")
	return nil
}

func (a *App) reset(ctx context.Context, args []string) error {
	token := ""
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := GetSimpleText(a.reader, "Reset token", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	success("password updated, sign in with the new one")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u, err := a.auth.WhoAmI(ctx)
	if err != nil {
		return err
	}
	printUser(u)
	return nil
}

func printUser(u *models.User) {
	field("Name", u.Name())
	field("Email", u.Email)
	field("Role", string(u.Role))
	verified := "no"
	if u.IsEmailVerified {
		verified = "yes"
	}
	field("Verified", verified)
	for _, f := range []struct {
		label string
		v     *string
	}{{"Phone", u.Phone}, {"Address", u.Address}, {"Bio", u.Bio}, {"Avatar", u.Avatar}} {
		if f.v != nil && *f.v != "" {
			field(f.label, *f.v)
		}
	}
	if !u.CreatedAt.IsZero() {
		field("Member", "since "+humanize.Time(u.CreatedAt))
	}
}

// profile asks for every editable field; empty answers keep the current
// value and only changed fields are sent.
func (a *App) profile(ctx context.Context, _ []string) error {
	u := a.store.Snapshot().User
	if u == nil {
		return common.ErrorUnauthorized
	}

	var p models.ProfileUpdate
	changed := false
	ask := func(prompt string, current *string, dst **string) error {
		cur := ""
		if current != nil {
			cur = *current
		}
		v, err := getWithDefault(a.reader, prompt, cur, a.out)
		if err != nil {
			return err
		}
		if v != cur {
			*dst = &v
			changed = true
		}
		return nil
	}

	if err := ask("First name", &u.FirstName, &p.FirstName); err != nil {
		return err
	}
	if err := ask("Last name", &u.LastName, &p.LastName); err != nil {
		return err
	}
	if err := ask("Phone", u.Phone, &p.Phone); err != nil {
		return err
	}
	if err := ask("Address", u.Address, &p.Address); err != nil {
		return err
	}

	bio, err := GetMultiline(a.reader, "Bio (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if bio != "" && (u.Bio == nil || *u.Bio != bio) {
		p.Bio = &bio
		changed = true
	}

	avatar, err := GetSimpleText(a.reader, "Avatar (image URL or upload id, empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if avatar != "" {
		url := a.resolveImage(avatar)
		p.Avatar = &url
		changed = true
	}

	if !changed {
		notice("nothing to update")
		return nil
	}

	updated, err := a.auth.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}
	if updated != nil {
		success("profile updated")
		printUser(updated)
	}
	return nil
}
