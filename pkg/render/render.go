// Package render prints search results, history and parsed queries to a
// terminal using lipgloss styles.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
)

const (
	noResults     = "No results to display."
	noDescription = "No description provided."
	noHistory     = "No search history yet"
)

// Results prints one page of search results.
func Results(w io.Writer, res *search.Results, page, perPage int) {
	if res == nil || len(res.Items) == 0 {
		fmt.Fprintln(w, noDataStyle.Render(noResults))
		return
	}

	pages := search.TotalPages(res.TotalCount, perPage)
	header := fmt.Sprintf("%s results · page %d/%d", FormatNumber(res.TotalCount), page, pages)
	if res.IncompleteResults {
		header += " (incomplete)"
	}
	fmt.Fprintln(w, titleStyle.Render(header))

	for _, repo := range res.Items {
		fmt.Fprintln(w, Repo(repo))
	}
}

// Repo renders a single repository card.
func Repo(repo *github.Repository) string {
	var b strings.Builder

	b.WriteString(nameStyle.Render(repo.GetName()))
	if full := repo.GetFullName(); full != "" {
		b.WriteString(" " + metaStyle.Render(full))
	}
	b.WriteString("\n")

	desc := repo.GetDescription()
	if desc == "" {
		desc = noDescription
	}
	b.WriteString(desc + "\n")

	stats := []string{
		"★ " + FormatNumber(repo.GetStargazersCount()),
		"forks " + FormatNumber(repo.GetForksCount()),
		"watchers " + FormatNumber(repo.GetWatchersCount()),
		"issues " + FormatNumber(repo.GetOpenIssuesCount()),
	}
	if lang := repo.GetLanguage(); lang != "" {
		stats = append(stats, lang)
	}
	b.WriteString(strings.Join(stats, "  ") + "\n")

	if len(repo.Topics) > 0 {
		chips := make([]string, len(repo.Topics))
		for i, t := range repo.Topics {
			chips[i] = chipStyle.Render("#" + t)
		}
		b.WriteString(strings.Join(chips, " ") + "\n")
	}

	var meta []string
	if login := repo.GetOwner().GetLogin(); login != "" {
		meta = append(meta, "by "+login)
	}
	if created := repo.GetCreatedAt(); !created.IsZero() {
		meta = append(meta, "created "+created.Format(time.DateOnly))
	}
	if updated := repo.GetUpdatedAt(); !updated.IsZero() {
		meta = append(meta, "updated "+updated.Format(time.DateOnly))
	}
	if len(meta) > 0 {
		b.WriteString(metaStyle.Render(strings.Join(meta, " · ")) + "\n")
	}
	if url := repo.GetHTMLURL(); url != "" {
		b.WriteString(urlStyle.Render(url))
	}

	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// History prints the recorded searches, most recent first.
func History(w io.Writer, items []history.Item, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, noDataStyle.Render(noHistory))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Search history"))
	for _, it := range items {
		var b strings.Builder
		b.WriteString(nameStyle.Render(it.Query) + "\n")
		b.WriteString(formattedBody(query.Parse(it.Query)))
		b.WriteString(metaStyle.Render(fmt.Sprintf("%s · %s results · %s",
			it.ID, FormatNumber(it.Results.TotalCount), FormatTime(it.Time(), now))))
		fmt.Fprintln(w, cardStyle.Render(b.String()))
	}
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("Total: %d searches", len(items))))
}

// FormattedQuery prints the structured view of a parsed query.
func FormattedQuery(w io.Writer, fq query.FormattedQuery) {
	var b strings.Builder
	b.WriteString(nameStyle.Render(fq.RawQuery) + "\n")
	b.WriteString(formattedBody(fq))
	fmt.Fprintln(w, cardStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func formattedBody(fq query.FormattedQuery) string {
	var b strings.Builder
	if fq.SearchTerm != "" {
		fmt.Fprintf(&b, "%s: %s\n", Label("term"), fq.SearchTerm)
	}
	if len(fq.SearchIn) > 0 {
		chips := make([]string, len(fq.SearchIn))
		for i, f := range fq.SearchIn {
			chips[i] = chipStyle.Render(Label(f))
		}
		fmt.Fprintf(&b, "%s: %s\n", Label("in"), strings.Join(chips, " "))
	}
	for _, f := range fq.Filters {
		fmt.Fprintf(&b, "%s: %s\n", Label(f.Key), f.Value)
	}
	return b.String()
}
