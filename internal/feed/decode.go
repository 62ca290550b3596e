package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocarina/gocsv"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/textnorm"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeJobs parses a job feed in the given format and fills the side lists
// when the payload did not carry them.
func DecodeJobs(body []byte, format string) (domain.JobFeed, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	var (
		feed domain.JobFeed
		err  error
	)
	switch format {
	case FormatJSON, "":
		feed, err = decodeJobsJSON(body)
	case FormatCSV:
		feed.Jobs, err = decodeJobsCSV(body)
	case FormatHTML:
		feed.Jobs, err = decodeJobsHTML(body)
	default:
		return domain.JobFeed{}, fmt.Errorf("%w: unknown jobs format %q", ErrFormat, format)
	}
	if err != nil {
		return domain.JobFeed{}, err
	}
	if feed.Jobs == nil {
		feed.Jobs = []domain.Job{}
	}
	feed.FillSideLists()
	return feed, nil
}

func DecodeGroups(body []byte, format string) (domain.GroupFeed, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	switch format {
	case FormatJSON, "":
		return decodeGroupsJSON(body)
	case FormatCSV:
		return decodeGroupsCSV(body)
	default:
		return domain.GroupFeed{}, fmt.Errorf("%w: unknown groups format %q", ErrFormat, format)
	}
}

// ---- json ----

type jobsEnvelope struct {
	Jobs     []map[string]any `json:"jobs"`
	Dates    []string         `json:"dates"`
	Sessions []string         `json:"sessions"`
}

func decodeJobsJSON(body []byte) (domain.JobFeed, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return domain.JobFeed{}, fmt.Errorf("%w: empty jobs body", ErrFormat)
	}

	var env jobsEnvelope
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '[' {
		if err := dec.Decode(&env.Jobs); err != nil {
			return domain.JobFeed{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
	} else if err := dec.Decode(&env); err != nil {
		return domain.JobFeed{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	feed := domain.JobFeed{
		Jobs:     make([]domain.Job, 0, len(env.Jobs)),
		Dates:    env.Dates,
		Sessions: env.Sessions,
	}
	for _, raw := range env.Jobs {
		j := make(domain.Job, len(raw))
		for k, v := range raw {
			if s, ok := scalarString(v); ok {
				j[strings.TrimSpace(k)] = s
			}
		}
		feed.Jobs = append(feed.Jobs, j)
	}
	return feed, nil
}

// Spreadsheet exports put numbers and booleans where text is expected.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

func decodeGroupsJSON(body []byte) (domain.GroupFeed, error) {
	var feed domain.GroupFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return domain.GroupFeed{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if feed.Hosts == nil {
		feed.Hosts = domain.Groups{}
	}
	if feed.Brands == nil {
		feed.Brands = domain.Groups{}
	}
	return feed, nil
}

// ---- csv ----

func decodeJobsCSV(body []byte) ([]domain.Job, error) {
	rows, err := gocsv.CSVToMaps(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	jobs := make([]domain.Job, 0, len(rows))
	for _, row := range rows {
		j := make(domain.Job, len(row))
		for k, v := range row {
			if k = strings.TrimSpace(k); k != "" {
				j[k] = v
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

type groupRow struct {
	Kind         string `csv:"kind"`
	Key          string `csv:"key"`
	OriginalName string `csv:"original_name"`
	Link         string `csv:"link"`
}

// decodeGroupsCSV reads kind,key,original_name,link rows. A blank key falls
// back to the match key of the original name.
func decodeGroupsCSV(body []byte) (domain.GroupFeed, error) {
	var rows []groupRow
	if err := gocsv.Unmarshal(bytes.NewReader(body), &rows); err != nil {
		return domain.GroupFeed{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	feed := domain.GroupFeed{Hosts: domain.Groups{}, Brands: domain.Groups{}}
	for i, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			key = textnorm.MatchKey(r.OriginalName)
		}
		if key == "" {
			continue
		}
		g := domain.GroupLink{
			OriginalName: strings.TrimSpace(r.OriginalName),
			Link:         strings.TrimSpace(r.Link),
		}
		switch strings.ToLower(strings.TrimSpace(r.Kind)) {
		case "host":
			feed.Hosts[key] = g
		case "brand":
			feed.Brands[key] = g
		default:
			return domain.GroupFeed{}, fmt.Errorf("%w: row %d: unknown group kind %q", ErrFormat, i+2, r.Kind)
		}
	}
	return feed, nil
}

// ---- html ----

// decodeJobsHTML reads the first table of a published sheet page. The first
// row holds the column names; columns with a blank name (row numbers) are
// dropped, as are fully empty rows.
func decodeJobsHTML(body []byte) ([]domain.Job, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table in html feed", ErrFormat)
	}

	var header []string
	jobs := []domain.Job{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, textnorm.CleanText(td.Text()))
		})
		if header == nil {
			if hasText(cells) {
				header = cells
			}
			return
		}

		j := domain.Job{}
		for i, v := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			j[header[i]] = v
		}
		if hasText(valuesOf(j)) {
			jobs = append(jobs, j)
		}
	})

	if header == nil {
		return nil, fmt.Errorf("%w: html table has no header row", ErrFormat)
	}
	return jobs, nil
}

func hasText(xs []string) bool {
	for _, x := range xs {
		if x != "" {
			return true
		}
	}
	return false
}

func valuesOf(j domain.Job) []string {
	out := make([]string, 0, len(j))
	for _, v := range j {
		out = append(out, v)
	}
	return out
}
