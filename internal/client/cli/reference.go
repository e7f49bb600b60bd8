package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
)

func (a *App) BodyParts(ctx context.Context) error {
	values, err := a.reference.BodyParts(ctx)
	if err != nil {
		return err
	}
	a.printValues(values)
	return nil
}

func (a *App) Muscles(ctx context.Context) error {
	values, err := a.reference.MuscleParts(ctx)
	if err != nil {
		return err
	}
	a.printValues(values)
	return nil
}

// printValues lists a vocabulary with names in the active language.
func (a *App) printValues(values []models.ReferenceValue) {
	if len(values) == 0 {
		printlnFn(a.t("Nothing found."))
		return
	}
	for _, v := range values {
		printlnFn(fmt.Sprintf("%-16s %s", v.Code, a.t(v.Name)))
	}
}
