package report

type Report struct {
	Groups    []Group  `json:"groups"`
	Unmatched []string `json:"unmatched,omitempty"`
}

type Group struct {
	Identifier string   `json:"identifier"`
	Character  string   `json:"character"`
	Variant    string   `json:"variant"`
	Complete   bool     `json:"complete"`
	Missing    []string `json:"missing,omitempty"`
	Bundles    []Bundle `json:"bundles"`
}

type Bundle struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`

	// Path of the earlier group member with identical content, if any.
	DuplicateOf string `json:"duplicateOf,omitempty"`
}
