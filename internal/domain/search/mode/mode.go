package mode

// Mode selects how hits are projected into records.
type Mode string

// Projection modes.
const (
	// Minimal returns identifier-class fields only.
	Minimal Mode = "minimal"
	// Dump returns stored index fields plus the info block.
	Dump Mode = "dump"
	// Full returns the identifier for a record store lookup.
	Full Mode = "full"
)

// FromFast maps the "fast" request parameter to a mode:
// "true" is minimal, "index" is a dump, anything else is full.
func FromFast(fast string) Mode {
	switch fast {
	case "true":
		return Minimal
	case "index":
		return Dump
	default:
		return Full
	}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Minimal || m == Dump || m == Full
}
