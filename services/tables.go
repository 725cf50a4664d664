package services

import "github.com/yeremiapane/table-reservation/database"

// TableIDs -> bookable table identifiers, 1 through database.TableCount
func TableIDs() []int {
	ids := make([]int, 0, database.TableCount)
	for i := 1; i <= database.TableCount; i++ {
		ids = append(ids, i)
	}
	return ids
}
