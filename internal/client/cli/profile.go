package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/profile"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

var errNotSignedIn = errors.New("not signed in")

// ShowProfile loads the signed-in user's profile and prints it.
func (a *App) ShowProfile(ctx context.Context) error {
	if !a.isSignedIn() {
		return errNotSignedIn
	}
	p, err := a.profiles.Load(ctx)
	if err != nil {
		return a.profileError(err)
	}
	a.printProfile(p)
	return nil
}

func (a *App) SetName(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("usage: setname <name>")
	}
	return a.updateProfile(ctx, models.ProfileUpdate{Username: &name})
}

func (a *App) SetGender(ctx context.Context, value string) error {
	if value == "" {
		return errors.New("usage: setgender male|female")
	}
	g := models.Gender(strings.ToLower(value))
	return a.updateProfile(ctx, models.ProfileUpdate{Gender: &g})
}

// Avatar uploads the image at path and makes it the profile picture.
func (a *App) Avatar(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: avatar <path>")
	}
	if !a.isSignedIn() {
		return errNotSignedIn
	}

	image, err := readFile(path)
	if err != nil {
		return err
	}

	p, err := a.profiles.UploadAvatar(ctx, image)
	if err != nil {
		return a.profileError(err)
	}
	printlnFn(a.t("Avatar updated."))
	a.printProfile(p)
	return nil
}

func (a *App) updateProfile(ctx context.Context, u models.ProfileUpdate) error {
	if !a.isSignedIn() {
		return errNotSignedIn
	}
	p, err := a.profiles.Update(ctx, u)
	if err != nil {
		return a.profileError(err)
	}
	printlnFn(a.t("Profile saved."))
	a.printProfile(p)
	return nil
}

func (a *App) profileError(err error) error {
	if errors.Is(err, profile.ErrSuperseded) {
		return errors.New(a.t("session changed while loading the profile, try again"))
	}
	return err
}

func (a *App) printProfile(p *models.Profile) {
	if p == nil {
		printlnFn(a.t("No profile."))
		return
	}
	printlnFn(a.t("Email:"), deref(p.Email))
	printlnFn(a.t("Username:"), deref(p.Username))
	gender := ""
	if p.Gender != nil {
		gender = a.t(string(*p.Gender))
	}
	printlnFn(a.t("Gender:"), gender)
	printlnFn(a.t("Avatar:"), deref(p.AvatarURL))
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
