package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// ledgerWorld is the state shared by the steps of one scenario
type ledgerWorld struct {
	t       *testing.T
	f       *fixture
	users   map[string]string
	doc     *domain.Document
	result  *domain.SearchResult
	listed  []*domain.Version
	lastErr error
}

func (w *ledgerWorld) userID(name string) string {
	if id, ok := w.users[name]; ok {
		return id
	}
	id := w.f.addUser(w.t, name)
	w.users[name] = id
	return id
}

func (w *ledgerWorld) userExists(name string) error {
	w.userID(name)
	return nil
}

func (w *ledgerWorld) extractorReads(table *godog.Table) error {
	var pages []domain.PageText
	for _, row := range table.Rows[1:] {
		n, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return fmt.Errorf("bad page number %q", row.Cells[0].Value)
		}
		pages = append(pages, domain.PageText{Page: n, Text: row.Cells[1].Value})
	}
	w.f.extractor.Result = domain.NewExtraction(pages)
	return nil
}

func (w *ledgerWorld) userUploaded(ctx context.Context, name, filename string) error {
	doc, err := w.f.documentSvc.Create(ctx, w.userID(name), driving.CreateDocumentRequest{
		Upload: &domain.Upload{Filename: filename, Data: []byte("%PDF-1.4")},
	})
	if err != nil {
		return err
	}
	w.doc = doc
	return nil
}

func (w *ledgerWorld) uploadsVersion(ctx context.Context, name, filename string) error {
	_, err := w.f.versionSvc.Create(ctx, w.userID(name), w.doc.ID, &domain.Upload{Filename: filename, Data: []byte(filename)})
	return err
}

func (w *ledgerWorld) versionByNumber(ctx context.Context, n int) (*domain.Version, error) {
	versions, err := w.f.versions.ListByDocument(ctx, w.doc.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.VersionNumber == n {
			return v, nil
		}
	}
	return nil, fmt.Errorf("document has no version %d", n)
}

func (w *ledgerWorld) deletesVersion(ctx context.Context, name string, n int) error {
	v, err := w.versionByNumber(ctx, n)
	if err != nil {
		return err
	}
	w.lastErr = w.f.versionSvc.Delete(ctx, w.userID(name), w.doc.ID, v.ID)
	return nil
}

func (w *ledgerWorld) listsVersions(ctx context.Context, name string) error {
	w.listed, w.lastErr = w.f.versionSvc.List(ctx, w.userID(name), w.doc.ID)
	return nil
}

func (w *ledgerWorld) searchesFor(ctx context.Context, name, query string) error {
	w.result, w.lastErr = w.f.searchSvc.Search(ctx, w.userID(name), w.doc.ID, query)
	return nil
}

func (w *ledgerWorld) documentHasVersions(n int) error {
	if got := w.f.versions.Count(w.doc.ID); got != n {
		return fmt.Errorf("expected %d versions, got %d", n, got)
	}
	return nil
}

func (w *ledgerWorld) currentVersionIs(ctx context.Context, n int) error {
	doc, err := w.f.docs.Get(ctx, w.doc.ID)
	if err != nil {
		return err
	}
	v, err := w.versionByNumber(ctx, n)
	if err != nil {
		return err
	}
	if doc.CurrentVersionID == nil || *doc.CurrentVersionID != v.ID {
		return fmt.Errorf("expected version %d to be current", n)
	}
	return nil
}

func (w *ledgerWorld) requestFails(message string) error {
	if w.lastErr == nil {
		return errors.New("expected the request to fail")
	}
	if w.lastErr.Error() != message {
		return fmt.Errorf("expected error %q, got %q", message, w.lastErr.Error())
	}
	return nil
}

func (w *ledgerWorld) matchesAre(table *godog.Table) error {
	if w.lastErr != nil {
		return w.lastErr
	}
	rows := table.Rows[1:]
	if len(rows) != len(w.result.Matches) {
		return fmt.Errorf("expected %d matches, got %d", len(rows), len(w.result.Matches))
	}
	for i, row := range rows {
		m := w.result.Matches[i]
		page, _ := strconv.Atoi(row.Cells[0].Value)
		want := row.Cells[1].Value
		if len(row.Cells) > 2 && row.Cells[2].Value == "yes" {
			want += "\n\n"
		}
		if m.Page != page || m.Preview != want {
			return fmt.Errorf("match %d: expected page %d %q, got page %d %q",
				i, page, want, m.Page, m.Preview)
		}
	}
	return nil
}

func (w *ledgerWorld) noMatches() error {
	if w.lastErr != nil {
		return w.lastErr
	}
	if len(w.result.Matches) != 0 {
		return fmt.Errorf("expected no matches, got %d", len(w.result.Matches))
	}
	return nil
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name: "docledger",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			w := &ledgerWorld{t: t}
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				w.f = newFixture()
				w.users = make(map[string]string)
				w.doc, w.result, w.listed, w.lastErr = nil, nil, nil, nil
				return ctx, nil
			})

			sc.Step(`^user "([^"]*)" exists$`, w.userExists)
			sc.Step(`^the PDF extractor reads these pages:$`, w.extractorReads)
			sc.Step(`^user "([^"]*)" uploaded "([^"]*)"$`, w.userUploaded)
			sc.Step(`^"([^"]*)" uploads a new version "([^"]*)"$`, w.uploadsVersion)
			sc.Step(`^"([^"]*)" deletes version (\d+)$`, w.deletesVersion)
			sc.Step(`^"([^"]*)" lists the versions$`, w.listsVersions)
			sc.Step(`^"([^"]*)" searches for "([^"]*)"$`, w.searchesFor)
			sc.Step(`^the document has (\d+) versions$`, w.documentHasVersions)
			sc.Step(`^the current version is number (\d+)$`, w.currentVersionIs)
			sc.Step(`^the request fails with "([^"]*)"$`, w.requestFails)
			sc.Step(`^the matches are:$`, w.matchesAre)
			sc.Step(`^there are no matches$`, w.noMatches)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
