package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"livesched-engine/internal/domain"
)

func slotOf(s string) string { return s }

func slots[T any](groups []TimeGroup[T]) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.TimeSlot)
	}
	return out
}

func TestGroupByTimeOrder(t *testing.T) {
	testCases := []struct {
		name     string
		items    []string
		expected []string
	}{
		{
			name:     "minutes then unparseable",
			items:    []string{"14:00 - 15:00", "09:00 - 10:00", "N/A"},
			expected: []string{"09:00 - 10:00", "14:00 - 15:00", "N/A"},
		},
		{
			name:     "blank and placeholder fold into N/A",
			items:    []string{"", "nan", "  ", "8:30 - 9:00"},
			expected: []string{"8:30 - 9:00", "N/A"},
		},
		{
			name:     "same start broken lexically",
			items:    []string{"09:00 - 11:00", "09:00 - 10:00"},
			expected: []string{"09:00 - 10:00", "09:00 - 11:00"},
		},
		{
			name:     "unparseable sorted lexically at the end",
			items:    []string{"TBD", "N/A", "evening", "23:59"},
			expected: []string{"23:59", "N/A", "TBD", "evening"},
		},
		{
			name:     "midnight start sorts after the last hour",
			items:    []string{"24:00 - 02:00", "23:30 - 24:00", "N/A", "00:30 - 01:00"},
			expected: []string{"00:30 - 01:00", "23:30 - 24:00", "24:00 - 02:00", "N/A"},
		},
		{
			name:     "slot is trimmed",
			items:    []string{" 10:00 - 11:00", "10:00 - 11:00 "},
			expected: []string{"10:00 - 11:00"},
		},
		{
			name:     "no items",
			items:    nil,
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, slots(GroupByTime(tc.items, slotOf)))
		})
	}
}

func TestGroupJobsKeepsInputOrder(t *testing.T) {
	jobs := []domain.Job{
		{domain.FieldStore: "b", domain.FieldTimeSlot: "10:00 - 11:00"},
		{domain.FieldStore: "a", domain.FieldTimeSlot: "09:00 - 10:00"},
		{domain.FieldStore: "c", domain.FieldTimeSlot: "10:00 - 11:00"},
		{domain.FieldStore: "d"},
	}

	groups := GroupJobs(jobs)

	assert.Equal(t, []string{"09:00 - 10:00", "10:00 - 11:00", "N/A"}, slots(groups))
	assert.Equal(t, []string{"b", "c"}, stores(groups[1].Items))
	assert.Equal(t, []string{"d"}, stores(groups[2].Items))
}

func TestGroupByTimeDeterministic(t *testing.T) {
	slotGen := rapid.SampledFrom([]string{
		"09:00 - 10:00", "9:00 - 9:30", "14:00 - 15:00", "22:00 - 02:00", "N/A", "", "TBD", "nan",
	})
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(slotGen).Draw(t, "slots")

		a := GroupByTime(items, slotOf)
		b := GroupByTime(items, slotOf)

		assert.Equal(t, a, b)
		total := 0
		for i, g := range a {
			total += len(g.Items)
			if i > 0 && slotOrder(a[i-1].TimeSlot) > slotOrder(g.TimeSlot) {
				t.Fatalf("group %q sorted before %q", a[i-1].TimeSlot, g.TimeSlot)
			}
		}
		if total != len(items) {
			t.Fatalf("grouped %d of %d items", total, len(items))
		}
	})
}
