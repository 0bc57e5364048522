package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gdata/internal/connectors/calendar"
	"github.com/custodia-labs/gdata/internal/connectors/contacts"
	"github.com/custodia-labs/gdata/internal/connectors/tasks"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
	"github.com/custodia-labs/gdata/internal/core/query"
	"github.com/custodia-labs/gdata/internal/core/services"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Flags for query.
var (
	queryKind       string
	queryText       string
	queryMaxResults int64
	queryPages      int
	queryOutput     string
)

// feedKind describes how to decode one kind of feed.
type feedKind struct {
	factory model.EntryFactory
	domain  *domain.AuthorizationDomain
	format  services.Format
}

func kindFor(name string) (feedKind, error) {
	switch name {
	case "entry", "":
		return feedKind{factory: model.DefaultFactory, format: services.FormatXML}, nil
	case "event":
		return feedKind{model.FactoryFor(calendar.NewEvent()), &calendar.AuthorizationDomain, services.FormatXML}, nil
	case "calendar":
		return feedKind{model.FactoryFor(calendar.NewCalendar()), &calendar.AuthorizationDomain, services.FormatXML}, nil
	case "contact":
		return feedKind{model.FactoryFor(contacts.NewContact()), &contacts.AuthorizationDomain, services.FormatXML}, nil
	case "task":
		return feedKind{model.FactoryFor(tasks.NewTask("")), &tasks.AuthorizationDomain, services.FormatJSON}, nil
	case "tasklist":
		return feedKind{model.FactoryFor(tasks.NewTasklist("")), &tasks.AuthorizationDomain, services.FormatJSON}, nil
	default:
		return feedKind{}, fmt.Errorf("unknown kind %q (entry, event, calendar, contact, task, tasklist)", name)
	}
}

// pager is a query that can move to its next page.
type pager interface {
	query.Querier
	NextPage() bool
}

var queryCmd = &cobra.Command{
	Use:   "query <feed-uri>",
	Short: "Fetch a feed and list its entries",
	Long: `Fetches a feed and prints its entries.

--kind selects how entries are decoded and which credentials are sent. The
plain entry kind reads public feeds without credentials.

Examples:
  gdata query https://www.google.com/calendar/feeds/default/owncalendars/full --kind calendar
  gdata query https://www.googleapis.com/tasks/v1/users/@me/lists --kind tasklist -o json
  gdata query https://example.com/feeds/public --q tennis --max-results 10 --pages 3`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryKind, "kind", "k", "entry", "entry kind: entry, event, calendar, contact, task, tasklist")
	queryCmd.Flags().StringVar(&queryText, "q", "", "full-text query")
	queryCmd.Flags().Int64VarP(&queryMaxResults, "max-results", "n", 0, "entries per page")
	queryCmd.Flags().IntVarP(&queryPages, "pages", "p", 1, "number of pages to fetch")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "text", "output format: text, json")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	kind, err := kindFor(queryKind)
	if err != nil {
		return err
	}
	if queryOutput != "text" && queryOutput != "json" {
		return fmt.Errorf("unknown output format %q", queryOutput)
	}
	if queryPages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	authorizer, err := a.authorizer(ctx)
	if err != nil {
		return err
	}
	svc, err := a.service(authorizer, kind.format)
	if err != nil {
		return err
	}

	q := newPager(kind)
	var entries []model.Entity
	for page := 0; page < queryPages; page++ {
		feed, err := svc.Query(ctx, kind.domain, args[0], q, kind.factory)
		if err != nil {
			return err
		}
		logger.Debug("Fetched page %d: %d entries", page+1, len(feed.Entries()))
		entries = append(entries, feed.Entries()...)
		if feed.LookUpLink(model.RelNext) == nil && feed.NextPageToken() == "" {
			break
		}
		q.NextPage()
	}

	if queryOutput == "json" {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No entries.")
		return nil
	}
	for i, e := range entries {
		cmd.Printf("[%d] %s (%s)\n", i+1, e.BaseEntry().Title(), e.BaseEntry().ID())
	}
	return nil
}

func newPager(kind feedKind) pager {
	if kind.format == services.FormatJSON {
		q := tasks.NewQuery()
		if queryMaxResults > 0 {
			q.SetMaxResults(queryMaxResults)
		}
		return q
	}
	return query.New(queryText, 0, queryMaxResults)
}

func printJSON(cmd *cobra.Command, entries []model.Entity) error {
	raw := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		raw[i] = parsable.ToJSON(e)
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
