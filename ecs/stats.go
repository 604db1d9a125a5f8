package ecs

import (
	"slices"
	"strings"
)

// StorageStats is a point-in-time summary of a storage.
type StorageStats struct {
	TableCount       int
	TotalEntityCount int
	SingletonCount   int
	ViewCount        int
	TableBreakdown   []TableStats
	SingletonTypes   []string
}

// TableStats describes one component table.
type TableStats struct {
	ID          ComponentID
	Name        string
	EntityCount int
	Capacity    int
	Version     uint32
}

// CollectStats walks every table and singleton slot. It allocates and is meant for tooling,
// not for the tick loop.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		ViewCount: s.views.Len(),
	}

	for _, t := range s.tables {
		if t == nil {
			continue
		}
		stats.TableCount++
		stats.TableBreakdown = append(stats.TableBreakdown, TableStats{
			ID:          t.ID(),
			Name:        t.Name(),
			EntityCount: t.Len(),
			Capacity:    t.Cap(),
			Version:     t.Version(),
		})
	}
	stats.TotalEntityCount = len(s.Entities())

	for id, v := range s.singletons {
		if v != nil {
			stats.SingletonCount++
			stats.SingletonTypes = append(stats.SingletonTypes, s.registry.Name(ComponentID(id)))
		}
	}
	slices.SortFunc(stats.TableBreakdown, func(a, b TableStats) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.Sort(stats.SingletonTypes)
	return stats
}
