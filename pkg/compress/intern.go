package compress

// Interner content-addresses document strings into string_ids, compressing
// each unique string exactly once against a trained Table. Callers drive
// determinism by interning in a fixed order (spec.md's Design notes: by
// doc_id, then field index within a document) — Interner itself only
// guarantees "same string in, same id out" and ordered, gap-free id
// assignment from 1.
type Interner struct {
	table  *Table
	seen   map[string]uint32
	blobs  [][]byte
}

// NewInterner creates an Interner backed by table.
func NewInterner(table *Table) *Interner {
	return &Interner{
		table: table,
		seen:  make(map[string]uint32),
	}
}

// Intern returns s's string_id, compressing and appending it on first
// occurrence. The empty string always maps to the reserved sentinel 0 and
// is never stored.
func (in *Interner) Intern(s string) uint32 {
	if s == "" {
		return 0
	}
	if id, ok := in.seen[s]; ok {
		return id
	}
	compressed := in.table.Compress([]byte(s))
	in.blobs = append(in.blobs, compressed)
	id := uint32(len(in.blobs))
	in.seen[s] = id
	return id
}

// Strings returns the compressed string table in string_id order: index 0
// holds string_id 1, index 1 holds string_id 2, and so on.
func (in *Interner) Strings() [][]byte {
	return in.blobs
}
