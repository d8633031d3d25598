package ecs

import "sort"

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	TotalEntityCount int
	TableCount       int
	SingletonCount   int
	TableBreakdown   []TableStats
	SingletonTypes   []string
}

// TableStats describes one component table.
type TableStats struct {
	ComponentType string
	EntityCount   int
}

// CollectStats walks the storage and returns counts per component table and singleton.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		TotalEntityCount: s.entityCount,
		TableCount:       len(s.tables),
		SingletonCount:   len(s.singletons),
		TableBreakdown:   make([]TableStats, 0, len(s.tables)),
		SingletonTypes:   make([]string, 0, len(s.singletons)),
	}

	for t, table := range s.tables {
		stats.TableBreakdown = append(stats.TableBreakdown, TableStats{
			ComponentType: t.String(),
			EntityCount:   table.Len(),
		})
	}
	sort.Slice(stats.TableBreakdown, func(i, j int) bool {
		return stats.TableBreakdown[i].ComponentType < stats.TableBreakdown[j].ComponentType
	})

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
