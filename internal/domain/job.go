package domain

import "strings"

// Column names as they come out of the schedule spreadsheet.
const (
	FieldStore           = "Store"
	FieldAddress         = "Address"
	FieldRoom            = "Studio room"
	FieldDate            = "Date livestream"
	FieldTimeSlot        = "Time slot"
	FieldSession         = "Type of session"
	FieldTalent1         = "Talent 1"
	FieldTalent2         = "Talent 2"
	FieldCoordinator1    = "Coordinator 1"
	FieldCoordinator2    = "Coordinator 2"
	FieldBrand           = "Brand"
	FieldBrandGroupLink  = "Brand group link"
	FieldHostGroupLink   = "Host group link"
	NamePlaceholder      = "-"
	namesSeparator       = " & "
	spreadsheetNullValue = "nan"
)

// Job is one scheduled livestream row. Any field may be missing.
type Job map[string]string

// Get returns the trimmed field value, or "" when the field is absent, blank
// or the spreadsheet export placeholder "nan".
func (j Job) Get(key string) string {
	if j == nil {
		return ""
	}
	v := strings.TrimSpace(j[key])
	if strings.EqualFold(v, spreadsheetNullValue) {
		return ""
	}
	return v
}

func (j Job) Has(key string) bool { return j.Get(key) != "" }

func (j Job) TalentDisplay() string {
	return joinNames(j.Get(FieldTalent1), j.Get(FieldTalent2))
}

func (j Job) CoordinatorDisplay() string {
	return joinNames(j.Get(FieldCoordinator1), j.Get(FieldCoordinator2))
}

func joinNames(a, b string) string {
	switch {
	case a != "" && b != "":
		return a + namesSeparator + b
	case a != "":
		return a
	case b != "":
		return b
	default:
		return NamePlaceholder
	}
}

// JobFeed is one pull of the schedule sheet.
type JobFeed struct {
	Jobs     []Job    `json:"jobs"`
	Dates    []string `json:"dates"`
	Sessions []string `json:"sessions"`
}

// FillSideLists derives Dates and Sessions from Jobs when upstream didn't send them.
func (f *JobFeed) FillSideLists() {
	if len(f.Dates) == 0 {
		f.Dates = distinct(f.Jobs, FieldDate)
	}
	if len(f.Sessions) == 0 {
		f.Sessions = distinct(f.Jobs, FieldSession)
	}
}

func distinct(jobs []Job, key string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, j := range jobs {
		v := j.Get(key)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
