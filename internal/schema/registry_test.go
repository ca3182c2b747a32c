package schema

import "testing"

func TestResolveColumnAliases(t *testing.T) {
	reg := Default()

	cases := map[string]string{
		"router_serial":  "router_serial",
		"routerSerial":   "router_serial",
		"RouterSerial":   "router_serial",
		"modemMac":       "modem_mac",
		"meter_number":   "meter_number",
		"gateCode":       "gate_code",
		"technicianNote": "technician_note",
	}
	for field, want := range cases {
		got, ok := reg.ResolveColumn(TableAddressRecords, field)
		if !ok {
			t.Fatalf("expected %q to resolve, got no column", field)
		}
		if got != want {
			t.Fatalf("field %q resolved to %q, want %q", field, got, want)
		}
	}
}

func TestResolveColumnUnknownField(t *testing.T) {
	reg := Default()

	if col, ok := reg.ResolveColumn(TableAddressRecords, "installNotes"); ok {
		t.Fatalf("expected no column for installNotes, got %q", col)
	}
	if col, ok := reg.ResolveColumn(Table("customers"), "router_serial"); ok {
		t.Fatalf("expected no column for unknown table, got %q", col)
	}
}

func TestKnownColumnsUnknownTable(t *testing.T) {
	reg := Default()

	if cols := reg.KnownColumns(Table("customers")); len(cols) != 0 {
		t.Fatalf("expected empty columns for unknown table, got %v", cols)
	}
}

func TestKnownColumnsSortedAndComplete(t *testing.T) {
	reg := Default()

	cols := reg.KnownColumns(TableAddressRecords)
	if len(cols) == 0 {
		t.Fatal("expected columns for address_records")
	}
	for i := 1; i < len(cols); i++ {
		if cols[i-1] >= cols[i] {
			t.Fatalf("columns not sorted: %v", cols)
		}
	}
	seen := map[string]bool{}
	for _, c := range cols {
		seen[c] = true
	}
	for _, want := range []string{"router_serial", "modem_mac", "meter_number", "panel_id", "gate_code", "technician_note"} {
		if !seen[want] {
			t.Fatalf("expected column %q in %v", want, cols)
		}
	}
}

func TestIsSupportedTable(t *testing.T) {
	reg := Default()

	if !reg.IsSupportedTable(TableAddressRecords) {
		t.Fatal("address_records should be supported")
	}
	if reg.IsSupportedTable(Table("customers")) {
		t.Fatal("customers should not be supported")
	}
}

func TestRegistryIsolation(t *testing.T) {
	custom := NewRegistry(NewDescriptor(Table("meters"), "extra", []string{"serial"}, map[string]string{"serialNumber": "serial"}))

	if !custom.IsSupportedTable(Table("meters")) {
		t.Fatal("meters should be supported in the custom registry")
	}
	if custom.IsSupportedTable(TableAddressRecords) {
		t.Fatal("custom registry should not know address_records")
	}
	if col, ok := custom.ResolveColumn(Table("meters"), "serialNumber"); !ok || col != "serial" {
		t.Fatalf("alias resolve failed, got %q ok=%v", col, ok)
	}
}
