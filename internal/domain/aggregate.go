package domain

// Cell is one (city, hour) entry of the heatmap matrix.
type Cell struct {
	City       string `json:"city"`
	Hour       int    `json:"hour"`
	Collisions int    `json:"collisions"`
}

// Matrix is the dense city-by-hour grid of collision counts.
type Matrix struct {
	Cities        []string `json:"cities"`
	Hours         []int    `json:"hours"`
	Cells         []Cell   `json:"cells"`
	MaxCollisions int      `json:"max_collisions"`
}

// AggregateStats describes how many rows fed a Matrix.
type AggregateStats struct {
	RowsRead        int `json:"rows_read"`
	RowsRetained    int `json:"rows_retained"`
	RowsInvalidHour int `json:"rows_invalid_hour"`
}

type cellKey struct {
	city string
	hour int
}

// Aggregate counts records matching the filter per (city, hour) and expands
// the counts into a dense Matrix ordered by the filter's cities, then hours.
func Aggregate(records []CollisionRecord, filter FilterSet) Matrix {
	m, _ := AggregateWithStats(records, filter)
	return m
}

// AggregateWithStats is Aggregate plus row accounting.
func AggregateWithStats(records []CollisionRecord, filter FilterSet) (Matrix, AggregateStats) {
	stats := AggregateStats{RowsRead: len(records)}
	counts := make(map[cellKey]int)

	for _, r := range records {
		if r.Hour == InvalidHour {
			stats.RowsInvalidHour++
		}
		if !filter.Matches(r) {
			continue
		}
		counts[cellKey{city: r.City, hour: r.Hour}]++
		stats.RowsRetained++
	}

	m := Matrix{
		Cities: append([]string(nil), filter.Cities...),
		Hours:  append([]int(nil), filter.Hours...),
		Cells:  make([]Cell, 0, len(filter.Cities)*len(filter.Hours)),
	}
	for _, city := range filter.Cities {
		for _, hour := range filter.Hours {
			n := counts[cellKey{city: city, hour: hour}]
			m.Cells = append(m.Cells, Cell{City: city, Hour: hour, Collisions: n})
			if n > m.MaxCollisions {
				m.MaxCollisions = n
			}
		}
	}
	return m, stats
}

// At returns the count for a (city, hour) pair and whether the pair is part of
// the matrix.
func (m Matrix) At(city string, hour int) (int, bool) {
	for _, c := range m.Cells {
		if c.City == city && c.Hour == hour {
			return c.Collisions, true
		}
	}
	return 0, false
}

// Total returns the sum of all cell counts.
func (m Matrix) Total() int {
	total := 0
	for _, c := range m.Cells {
		total += c.Collisions
	}
	return total
}
