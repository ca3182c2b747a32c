package schema

import "sort"

// Table identifies a relational table eligible for dynamic field extraction.
// The set is closed on purpose: extracted values must never be routed to a
// table nobody vetted, so adding one is a code change here and nowhere else.
type Table string

const (
	TableAddressRecords Table = "address_records"
)

// Descriptor is the typed-row shape of one supported table: the physical
// columns a logical field may resolve to, the alias table mapping logical
// names onto them, and the name of the schemaless overflow column.
type Descriptor struct {
	Table          Table
	OverflowColumn string

	// columns is the set of writable physical columns.
	columns map[string]struct{}
	// aliases maps logical field names (several spellings allowed) to a
	// physical column. Pure data, no side effects.
	aliases map[string]string
}

func NewDescriptor(table Table, overflowColumn string, columns []string, aliases map[string]string) Descriptor {
	colSet := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		colSet[c] = struct{}{}
	}
	aliasCopy := make(map[string]string, len(aliases))
	for k, v := range aliases {
		aliasCopy[k] = v
	}
	// every column resolves to itself
	for c := range colSet {
		if _, ok := aliasCopy[c]; !ok {
			aliasCopy[c] = c
		}
	}
	return Descriptor{
		Table:          table,
		OverflowColumn: overflowColumn,
		columns:        colSet,
		aliases:        aliasCopy,
	}
}

// Registry is an immutable table → descriptor mapping built at process
// start. Tests construct reduced registries with NewRegistry; production
// code uses Default().
type Registry struct {
	tables map[Table]Descriptor
}

func NewRegistry(descs ...Descriptor) *Registry {
	tables := make(map[Table]Descriptor, len(descs))
	for _, d := range descs {
		tables[d.Table] = d
	}
	return &Registry{tables: tables}
}

// ResolveColumn returns the physical column for a logical field name.
// Absence is a meaningful result (the field belongs in the overflow map),
// not an error. Unknown tables resolve nothing.
func (r *Registry) ResolveColumn(table Table, field string) (string, bool) {
	desc, ok := r.tables[table]
	if !ok {
		return "", false
	}
	col, ok := desc.aliases[field]
	return col, ok
}

// KnownColumns returns the writable physical columns of a table, sorted.
// Unknown tables yield an empty set.
func (r *Registry) KnownColumns(table Table) []string {
	desc, ok := r.tables[table]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(desc.columns))
	for c := range desc.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) IsSupportedTable(table Table) bool {
	_, ok := r.tables[table]
	return ok
}

// Descriptor returns the typed-row descriptor for a supported table.
func (r *Registry) Descriptor(table Table) (Descriptor, bool) {
	desc, ok := r.tables[table]
	return desc, ok
}

// Tables returns the supported table names, sorted.
func (r *Registry) Tables() []Table {
	out := make([]Table, 0, len(r.tables))
	for t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
