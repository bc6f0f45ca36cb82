package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/client/services"
)

func (a *App) Categories(context.Context) error {
	fmt.Fprintln(a.out, colorTag(models.CategoryAll, ""))
	for _, c := range models.Categories {
		fmt.Fprintln(a.out, colorTag(c.Name, c.Color))
	}
	return nil
}

// Filter switches the category and re-lists.
func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: filter <all|"+strings.Join(categoryNames(), "|")+">")
		return nil
	}
	fmt.Fprintln(a.out, "Loading...")
	return a.afterFetch(a.facts.SetCategory(ctx, strings.ToLower(args[0])))
}

// Sort switches the order and re-lists.
func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: sort <"+strings.Join(sortKeyNames(), "|")+">")
		return nil
	}
	key, err := models.ParseSortKey(strings.ToLower(args[0]))
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Loading...")
	return a.afterFetch(a.facts.SetSortKey(ctx, key))
}

func (a *App) Refresh(ctx context.Context) error {
	fmt.Fprintln(a.out, "Loading...")
	return a.afterFetch(a.facts.Refresh(ctx))
}

func (a *App) List(context.Context) error {
	renderList(a.out, a.facts.Facts(), a.facts.Loading())
	return nil
}

func (a *App) afterFetch(err error) error {
	switch {
	case err == nil:
		renderList(a.out, a.facts.Facts(), false)
		return nil
	case errors.Is(err, services.ErrStaleFetch):
		return nil
	case errors.Is(err, services.ErrFetchFailed):
		fmt.Fprintln(a.out, services.ErrFetchFailed.Error())
	default:
		fmt.Fprintln(a.out, err.Error())
	}
	return err
}

func categoryNames() []string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, c.Name)
	}
	return names
}

func sortKeyNames() []string {
	names := make([]string, 0, len(models.SortKeys))
	for _, k := range models.SortKeys {
		names = append(names, string(k))
	}
	return names
}
