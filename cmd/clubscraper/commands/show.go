package commands

import (
	"fmt"
	"io"
	"strings"

	"clubscraper/internal/export"
	"clubscraper/internal/scrapers/clubsma"
	"clubscraper/lib/textutil"
	"clubscraper/lib/util/serviceutil"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// a search term matches names at least this similar to it.
const similarityThreshold = 0.85

var (
	showFile   string
	showSearch string
	showLimit  int
)

func init() {
	showCmd.Flags().StringVar(&showFile, "file", "clubs.json", "json file written by a previous scrape")
	showCmd.Flags().StringVar(&showSearch, "search", "", "only show clubs whose name contains or resembles this")
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "show at most this many clubs, 0 shows all")
	RootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the clubs of a previous scrape as a table.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listings, err := export.ReadJSONFile(showFile)
		if err != nil {
			serviceutil.Fatal("failed to read clubs", err)
		}
		renderListings(cmd.OutOrStdout(), listings, showSearch, showLimit)
	},
}

func matchesSearch(name, search string) bool {
	search = textutil.NormalizeName(search)
	if search == "" {
		return true
	}
	name = textutil.NormalizeName(name)
	if strings.Contains(name, search) {
		return true
	}
	return matchr.JaroWinkler(name, search, false) >= similarityThreshold
}

type selection struct {
	shown   []clubsma.Listing
	matched int
	unnamed int
}

// selectListings drops unnamed clubs, then keeps the ones matching `search`
// up to `limit` (0 is no limit).
func selectListings(listings []clubsma.Listing, search string, limit int) selection {
	out := selection{shown: []clubsma.Listing{}}
	for _, l := range listings {
		if l.Name == clubsma.NotAvailable {
			out.unnamed++
			continue
		}
		if !matchesSearch(l.Name, search) {
			continue
		}
		out.matched++
		if limit > 0 && len(out.shown) >= limit {
			continue
		}
		out.shown = append(out.shown, l)
	}
	return out
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return ""
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderListings(out io.Writer, listings []clubsma.Listing, search string, limit int) {
	selected := selectListings(listings, search, limit)

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Quarter", "Phone", "Rating", "Verified", "Top partner", "Activities"})
	for i, l := range selected.shown {
		t.AppendRow(table.Row{
			i + 1,
			l.Name,
			l.Type,
			l.Quarter,
			l.Phone,
			l.Rating,
			yesNo(l.Verified),
			yesNo(l.IsTopPartner),
			strings.Join(l.Activities, export.ActivitiesSeparator),
		})
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d of %d shown", len(selected.shown), selected.matched),
		fmt.Sprintf("%d unnamed", selected.unnamed),
	})
	t.Render()
}
