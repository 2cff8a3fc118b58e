package models

// ActivityCounters are the cumulative counters from pg_stat_database.
type ActivityCounters struct {
	Commits      int64
	Rollbacks    int64
	RowsInserted int64
	RowsUpdated  int64
	RowsDeleted  int64
}

// Values returns the counters in their fixed order:
// commits, rollbacks, inserted, updated, deleted.
func (a ActivityCounters) Values() [5]int64 {
	return [5]int64{a.Commits, a.Rollbacks, a.RowsInserted, a.RowsUpdated, a.RowsDeleted}
}

// ConnectionStates maps a pg_stat_activity state to its connection count.
// States without connections are absent.
type ConnectionStates map[string]int

// StorageSize holds the summed table and index sizes in bytes.
type StorageSize struct {
	TableBytes int64
	IndexBytes int64
}
