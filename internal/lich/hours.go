package lich

// Hour is a two-hour period of the day.
type Hour struct {
	Branch Chi    `json:"branch"`
	Name   string `json:"name"`
	Window string `json:"window"`
}

// AuspiciousHours returns the 6 Hoàng Đạo hours of a day branch,
// ordered from Tý (23h) onward.
func AuspiciousHours(dayChi Chi) []Hour {
	favorable := hoangDao[floorMod(int(dayChi), chiCount)]
	var set [chiCount]bool
	for _, c := range favorable {
		set[c] = true
	}

	hours := make([]Hour, 0, len(favorable))
	for i := range chiCount {
		if set[i] {
			hours = append(hours, HourOf(Chi(i)))
		}
	}
	return hours
}

// HourOf returns the named time window of a branch.
func HourOf(c Chi) Hour {
	i := floorMod(int(c), chiCount)
	return Hour{Branch: Chi(i), Name: hourNames[i], Window: hourWindows[i]}
}

// IsHoangDaoDay reports whether a day branch marks an auspicious day.
func IsHoangDaoDay(dayChi Chi) bool {
	return hoangDaoDays[floorMod(int(dayChi), chiCount)]
}
