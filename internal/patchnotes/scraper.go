package patchnotes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006.01.02", "Jan 2, 2006"}

type Client struct {
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// Fetch downloads the patch note listing at url and parses it.
func (c *Client) Fetch(ctx context.Context, url string) ([]domain.PatchNote, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to fetch patch notes: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("status code error: %d", resp.StatusCode())
	}

	notes, err := Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}

	c.logger.Info().Str("url", url).Int("notes", len(notes)).Msg("patch notes scraped")
	return notes, nil
}

// Parse reads every article.patch-note in the document. Articles without a
// version and rows without a target are skipped. Notes come back newest first.
func Parse(r io.Reader) ([]domain.PatchNote, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch note html: %w", err)
	}

	var notes []domain.PatchNote
	doc.Find("article.patch-note").Each(func(i int, article *goquery.Selection) {
		heading := strings.TrimSpace(article.Find(".patch-version").First().Text())
		version := attrOr(article, "data-version", heading)
		if version == "" {
			return
		}

		note := domain.PatchNote{
			Kind:    parseKind(attrOr(article, "data-kind", ""), heading),
			Version: version,
			Date:    parseDate(article.Find("time").First()),
			Entries: []domain.PatchEntry{},
		}

		article.Find("li.patch-entry").Each(func(j int, row *goquery.Selection) {
			if entry, ok := parseEntry(row); ok {
				note.Entries = append(note.Entries, entry)
			}
		})

		notes = append(notes, note)
	})

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Date.After(notes[j].Date) })
	return notes, nil
}

func parseEntry(row *goquery.Selection) (domain.PatchEntry, bool) {
	target := strings.TrimSpace(row.Find(".target").First().Text())
	if target == "" {
		return domain.PatchEntry{}, false
	}

	e := domain.PatchEntry{
		TargetKind: domain.TargetKind(attrOr(row, "data-target-kind", string(domain.TargetCharacter))),
		Target:     target,
		Field:      strings.TrimSpace(row.Find(".field").First().Text()),
		Before:     strings.TrimSpace(row.Find(".before").First().Text()),
		After:      strings.TrimSpace(row.Find(".after").First().Text()),
	}
	switch e.TargetKind {
	case domain.TargetCharacter, domain.TargetWeapon, domain.TargetSystem:
	default:
		e.TargetKind = domain.TargetCharacter
	}

	before, okBefore := parseNumber(e.Before)
	after, okAfter := parseNumber(e.After)
	if okBefore && okAfter {
		d := math.Round((after-before)*10000) / 10000
		e.Delta = &d
	}

	e.ChangeType = domain.ChangeType(strings.ToLower(attrOr(row, "data-change", "")))
	switch e.ChangeType {
	case domain.ChangeBuff, domain.ChangeNerf, domain.ChangeAdjust, domain.ChangeRework:
	default:
		e.ChangeType = InferChange(e.Delta)
	}
	return e, true
}

// InferChange classifies a row from its numeric delta.
func InferChange(delta *float64) domain.ChangeType {
	switch {
	case delta == nil || *delta == 0:
		return domain.ChangeAdjust
	case *delta > 0:
		return domain.ChangeBuff
	default:
		return domain.ChangeNerf
	}
}

func parseKind(attr, heading string) domain.PatchKind {
	if domain.PatchKind(strings.ToLower(attr)) == domain.PatchKindHotfix {
		return domain.PatchKindHotfix
	}
	if attr == "" && strings.Contains(strings.ToLower(heading), "hotfix") {
		return domain.PatchKindHotfix
	}
	return domain.PatchKindRelease
}

func parseDate(sel *goquery.Selection) time.Time {
	raw := attrOr(sel, "datetime", strings.TrimSpace(sel.Text()))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "s")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func attrOr(sel *goquery.Selection, name, fallback string) string {
	if v, ok := sel.Attr(name); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}
