package cli

import (
	"context"
	"errors"
)

// SetLang switches the interface language, fetching its strings if they
// are not loaded yet.
func (a *App) SetLang(ctx context.Context, code string) error {
	if code == "" {
		printlnFn(a.t("Language:"), a.translations.Lang())
		return nil
	}
	if err := a.translations.Initialize(ctx, code); err != nil {
		return err
	}
	printlnFn(a.t("Language:"), a.translations.Lang())
	return nil
}

// ReloadTranslations re-fetches the active language. The current strings
// stay in use if the fetch fails.
func (a *App) ReloadTranslations(ctx context.Context) error {
	if err := a.translations.Reload(ctx); err != nil {
		return err
	}
	printlnFn(a.t("Translations reloaded."))
	return nil
}

func (a *App) Translate(key string) error {
	if key == "" {
		return errors.New("usage: t <key>")
	}
	printlnFn(a.t(key))
	return nil
}
