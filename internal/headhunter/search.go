package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	vacanciesPath = "/vacancies"

	defaultPerPage = 50
	maxPerPage     = 100
)

// SearchOptions narrows a vacancy search. Zero values mean "API default"
// except AreaID, which callers normally pin to their region.
type SearchOptions struct {
	AreaID  int
	Page    int
	PerPage int
}

// SearchResult is one page of vacancy summaries.
type SearchResult struct {
	Items   []*Vacancy `json:"items"`
	Found   int        `json:"found"`
	Pages   int        `json:"pages"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// SearchVacancies runs a text search for postings. Results come back as
// summaries: no description, no key skills.
func (c *Client) SearchVacancies(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := url.Values{}
	q.Set("text", query)
	q.Set("per_page", strconv.Itoa(perPage))
	if opts.AreaID > 0 {
		q.Set("area", strconv.Itoa(opts.AreaID))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}

	raw, err := c.getJSON(ctx, vacanciesPath, q)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := decodeShape(raw, &result); err != nil {
		return nil, fmt.Errorf("unexpected search response shape: %w", err)
	}

	return &result, nil
}

// CountVacancies returns how many postings match the query without pulling
// any of them (per_page=0 answers with the found counter only).
func (c *Client) CountVacancies(ctx context.Context, query string, areaID int) (int, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("per_page", "0")
	if areaID > 0 {
		q.Set("area", strconv.Itoa(areaID))
	}

	raw, err := c.getJSON(ctx, vacanciesPath, q)
	if err != nil {
		return 0, err
	}

	var result SearchResult
	if err := decodeShape(raw, &result); err != nil {
		return 0, fmt.Errorf("unexpected count response shape: %w", err)
	}

	return result.Found, nil
}

// GetVacancy fetches the full posting detail, description and key skills
// included.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	raw, err := c.getJSON(ctx, vacanciesPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var vacancy Vacancy
	if err := decodeShape(raw, &vacancy); err != nil {
		return nil, fmt.Errorf("unexpected vacancy response shape: %w", err)
	}

	return &vacancy, nil
}

// decodeShape maps a cached generic document onto a typed struct using the
// struct's json tags.
func decodeShape(raw any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
