package domain

import "time"

// GroupLink is a chat group (brand or host) and its join link.
type GroupLink struct {
	OriginalName string `json:"originalName" csv:"original_name"`
	Link         string `json:"link" csv:"link"`
}

// Groups maps a canonical name to its group. A nil map means nothing loaded yet.
type Groups map[string]GroupLink

type GroupFeed struct {
	Hosts  Groups `json:"hosts"`
	Brands Groups `json:"brands"`
}

// JobLinks are the groups resolved for one job.
type JobLinks struct {
	Brand *GroupLink `json:"brand,omitempty"`
	Host  *GroupLink `json:"host,omitempty"`
}

// Filters is the user-driven schedule filter state. Zero values mean "no constraint".
type Filters struct {
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`
	Session  string     `json:"session,omitempty"`
	Query    string     `json:"query,omitempty"`
}
