package seasonarchive

import "sort"

func sortByScheduledAt(items []ArchivedMatch) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ScheduledAt.Equal(items[j].ScheduledAt) {
			return items[i].ScheduledAt.Before(items[j].ScheduledAt)
		}
		return items[i].ExternalID < items[j].ExternalID
	})
}
