// Package records loads INAD case files and passenger volume files into the record types
// consumed by the analysis engine.
//
// Files use a fixed, canonical column set; there is no column-name guessing.
//
//	cases:   airline, origin, date, code
//	volumes: airline, airport, pax, date (optional)
//
// CSV, YAML and JSON are accepted, selected by file extension. A case is included in
// the analysis unless its refusal code is in the configured exclusion list.
package records
