package schedule

import (
	"math"
	"sort"
	"strings"

	"livesched-engine/internal/domain"
)

const noSlot = "N/A"

type TimeGroup[T any] struct {
	TimeSlot string `json:"timeSlot"`
	Items    []T    `json:"items"`
}

// GroupByTime buckets items by their trimmed time slot. Groups are ordered by
// the first clock time in the slot; slots without one go last. Items keep
// their input order inside a group.
func GroupByTime[T any](items []T, slot func(T) string) []TimeGroup[T] {
	var groups []TimeGroup[T]
	pos := map[string]int{}

	for _, it := range items {
		key := strings.TrimSpace(slot(it))
		if key == "" || strings.EqualFold(key, "nan") {
			key = noSlot
		}
		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, TimeGroup[T]{TimeSlot: key})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ma, mb := slotOrder(groups[a].TimeSlot), slotOrder(groups[b].TimeSlot)
		if ma != mb {
			return ma < mb
		}
		return groups[a].TimeSlot < groups[b].TimeSlot
	})
	return groups
}

func GroupJobs(jobs []domain.Job) []TimeGroup[domain.Job] {
	return GroupByTime(jobs, func(j domain.Job) string { return j.Get(domain.FieldTimeSlot) })
}

func slotOrder(slot string) int {
	if m, ok := MinuteOfDay(slot); ok {
		return m
	}
	return math.MaxInt
}
