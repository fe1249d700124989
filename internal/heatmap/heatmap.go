package heatmap

import (
	"time"

	"github.com/utsav7416/smart-home-controls/internal/model"
)

// Days is the width of the trailing-day strip, today inclusive.
const Days = 9

const dayFormat = "2006-01-02"

// Build rolls a device's per-day counts into the 9-cell intensity strip,
// oldest day first. Intensity is binned against the max count across the
// strip: 0 for no activity, then thirds of the max. Pure and idempotent.
func Build(dayCounts map[string]int, today time.Time) []model.HeatmapCell {
	cells := make([]model.HeatmapCell, 0, Days)

	maxCount := 0
	for i := Days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dayFormat)
		count := dayCounts[day]
		if count > maxCount {
			maxCount = count
		}
		cells = append(cells, model.HeatmapCell{Day: day, Count: count})
	}

	for i := range cells {
		cells[i].Intensity = intensity(cells[i].Count, maxCount)
	}
	return cells
}

func intensity(count, maxCount int) int {
	if count == 0 || maxCount == 0 {
		return 0
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio <= 0.33:
		return 1
	case ratio <= 0.66:
		return 2
	default:
		return 3
	}
}
