package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/til/internal/client/models"
)

const (
	ansiReset = "\x1b[0m"
	ansiDark  = "\x1b[38;2;30;30;46m"
	ansiRed   = "\x1b[1;31m"
)

// colorTag renders name on a 24-bit background of the given #rrggbb color.
// An unparsable color yields the plain name in brackets.
func colorTag(name, hex string) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return "[" + name + "]"
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s %s %s", r, g, b, ansiDark, name, ansiReset)
}

func parseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func renderFact(w io.Writer, f models.Fact) {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d ", f.ID)
	if f.Disputed() {
		b.WriteString(ansiRed + "[⛔ DISPUTED]" + ansiReset + " ")
	}
	fmt.Fprintf(&b, "%s (Source: %s)\n", f.Text, f.Source)

	color := ""
	if c, ok := models.CategoryByName(f.Category); ok {
		color = c.Color
	}
	fmt.Fprintf(&b, "    %s  %d 👍  %d 🤯  %d ⛔️\n", colorTag(f.Category, color),
		f.VotesInteresting, f.VotesMindblowing, f.VotesFalse)

	fmt.Fprint(w, b.String())
}

func renderList(w io.Writer, facts []models.Fact, loading bool) {
	if loading {
		fmt.Fprintln(w, "Loading...")
		return
	}
	if len(facts) == 0 {
		fmt.Fprintln(w, "No facts for this category yet! Create the first one.")
		return
	}
	for _, f := range facts {
		renderFact(w, f)
	}
	fmt.Fprintf(w, "There are %d facts in the database. Add your own!\n", len(facts))
}
