package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/client/services"
)

// Vote handles "vote <id> <interesting|mindblowing|false>". Remote failures
// are only logged; the list stays as it was.
func (a *App) Vote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: vote <id> <interesting|mindblowing|false>")
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid fact id %q\n", args[0])
		return err
	}
	column, err := models.ParseVoteColumn(args[1])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	updated, err := a.facts.Vote(ctx, id, column)
	switch {
	case err == nil:
		renderFact(a.out, *updated)
	case errors.Is(err, services.ErrFactNotFound), errors.Is(err, services.ErrRowPending), errors.Is(err, services.ErrInvalidVoteColumn):
		fmt.Fprintln(a.out, err.Error())
	}
	return err
}
