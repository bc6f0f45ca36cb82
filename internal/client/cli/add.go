package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/til/internal/client/services"
	"github.com/dmitrijs2005/til/internal/common"
)

var getChoice = GetChoice

// Add walks the user through the "share a fact" form and posts it.
func (a *App) Add(ctx context.Context) error {
	for {
		text, err := getSimpleText(a.reader, fmt.Sprintf("Share a fact with the world... (%d characters max)", common.MaxFactLength), a.out)
		if err != nil {
			return err
		}
		if a.factForm.SetText(text) {
			break
		}
		fmt.Fprintf(a.out, "Too long: at most %d characters.\n", common.MaxFactLength)
	}
	fmt.Fprintf(a.out, "%d characters left\n", a.factForm.Remaining())

	source, err := getSimpleText(a.reader, "Trustworthy source...", a.out)
	if err != nil {
		a.factForm.Reset()
		return err
	}
	a.factForm.SetSource(source)

	category, err := getChoice(a.reader, "Choose category:", categoryNames(), a.out)
	if err != nil {
		a.factForm.Reset()
		return err
	}
	a.factForm.SetCategory(category)

	created, err := a.factForm.Submit(ctx, a.facts)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintln(a.out, verr.Error())
		case errors.Is(err, services.ErrFormBusy):
			fmt.Fprintln(a.out, err.Error())
		default:
			fmt.Fprintf(a.out, "Could not post the fact: %s\n", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Posted fact #%d.\n", created.ID)
	renderFact(a.out, *created)
	return nil
}
