package schema

// AddressRecordColumns are the typed columns on address_records that a
// logical field may land in directly. Must stay in sync with
// domain.AddressRecord.
var AddressRecordColumns = []string{
	"router_serial",
	"modem_mac",
	"meter_number",
	"panel_id",
	"gate_code",
	"technician_note",
}

// addressRecordAliases maps the logical spellings administrators actually
// type onto physical columns. Several aliases may share a column.
var addressRecordAliases = map[string]string{
	"routerSerial":    "router_serial",
	"router_serial":   "router_serial",
	"RouterSerial":    "router_serial",
	"modemMac":        "modem_mac",
	"modem_mac":       "modem_mac",
	"modemMAC":        "modem_mac",
	"meterNumber":     "meter_number",
	"meter_number":    "meter_number",
	"panelId":         "panel_id",
	"panel_id":        "panel_id",
	"panelID":         "panel_id",
	"gateCode":        "gate_code",
	"gate_code":       "gate_code",
	"technicianNote":  "technician_note",
	"technician_note": "technician_note",
}

var defaultRegistry = NewRegistry(
	NewDescriptor(TableAddressRecords, "custom_fields", AddressRecordColumns, addressRecordAliases),
)

// Default is the process-wide registry. Immutable after init.
func Default() *Registry { return defaultRegistry }
