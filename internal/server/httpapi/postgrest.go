package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/til/internal/server/models"
)

// eqValue extracts v from an "eq.v" filter. Other operators are not supported.
func eqValue(raw string) (string, error) {
	v, ok := strings.CutPrefix(raw, "eq.")
	if !ok {
		return "", fmt.Errorf("unsupported filter %q", raw)
	}
	return v, nil
}

// parseFactFilter reads select, category and order from a listing query.
// Unknown parameters are rejected.
func parseFactFilter(q url.Values) (models.FactFilter, error) {
	var f models.FactFilter

	for key, values := range q {
		raw := values[len(values)-1]

		switch key {
		case "select":
			if raw != "*" {
				return f, fmt.Errorf("unsupported select %q", raw)
			}
		case "apikey":
		case "category":
			v, err := eqValue(raw)
			if err != nil {
				return f, err
			}
			f.Category = v
		case "order":
			col, dir, _ := strings.Cut(raw, ".")
			switch dir {
			case "", "asc":
			case "desc":
				f.Desc = true
			default:
				return f, fmt.Errorf("unsupported order direction %q", dir)
			}
			f.OrderBy = col
		default:
			return f, fmt.Errorf("unsupported parameter %q", key)
		}
	}

	return f, nil
}

// parseIDFilter reads the mandatory id=eq.N of an update.
func parseIDFilter(q url.Values) (int64, error) {
	raw := q.Get("id")
	if raw == "" {
		return 0, fmt.Errorf("updates need an id filter")
	}
	v, err := eqValue(raw)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// wantsRepresentation reports whether the Prefer header asks for the
// affected rows in the response.
func wantsRepresentation(prefer string) bool {
	for _, p := range strings.Split(prefer, ",") {
		if strings.TrimSpace(p) == "return=representation" {
			return true
		}
	}
	return false
}
