package introspect

// StorageType classifies a ledger entry's durability class.
type StorageType string

const (
	StorageInstance   StorageType = "instance"
	StoragePersistent StorageType = "persistent"
	StorageTemporary  StorageType = "temporary"
)

// LedgerEntry tracks one storage entry's access metadata, supplementing
// a ledger-entry inspector.
type LedgerEntry struct {
	Key         string
	Value       string
	StorageType StorageType
	TTL         uint32
	IsRead      bool
	IsWrite     bool
}

// LedgerInspector aggregates LedgerEntry observations for a single execution.
type LedgerInspector struct {
	Entries []LedgerEntry
}

// NearExpiry returns entries whose TTL is strictly less than threshold.
func (li *LedgerInspector) NearExpiry(threshold uint32) []LedgerEntry {
	var out []LedgerEntry
	for _, e := range li.Entries {
		if e.TTL < threshold {
			out = append(out, e)
		}
	}
	return out
}

// Summary is the supplemented per-storage-type breakdown
// (original_source/src/inspector/ledger.rs) used by the `inspect` verb.
type Summary struct {
	InstanceCount   int
	PersistentCount int
	TemporaryCount  int
	ReadCount       int
	WriteCount      int
}

// Summary computes the per-type and per-access-mode counts.
func (li *LedgerInspector) Summary() Summary {
	var s Summary
	for _, e := range li.Entries {
		switch e.StorageType {
		case StorageInstance:
			s.InstanceCount++
		case StoragePersistent:
			s.PersistentCount++
		case StorageTemporary:
			s.TemporaryCount++
		}
		if e.IsRead {
			s.ReadCount++
		}
		if e.IsWrite {
			s.WriteCount++
		}
	}
	return s
}
