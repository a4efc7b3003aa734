package domain

// Mode selects which internal sources take part in a run.
type Mode string

const (
	// ModeBoth combines the primary and secondary sources.
	ModeBoth Mode = "both"
	// ModePrimary reconciles the primary source alone.
	ModePrimary Mode = "primary"
	// ModeSecondary reconciles the secondary source alone.
	ModeSecondary Mode = "secondary"
)

// UsesPrimary reports whether the primary source is loaded in this mode.
func (m Mode) UsesPrimary() bool {
	return m == ModeBoth || m == ModePrimary
}

// UsesSecondary reports whether the secondary source is loaded in this mode.
func (m Mode) UsesSecondary() bool {
	return m == ModeBoth || m == ModeSecondary
}

// Format identifies the native column layout of an internal source.
type Format string

const (
	// FormatPolicyExport is the policy-management system export.
	FormatPolicyExport Format = "policy_export"
	// FormatCollections is the collections ledger export.
	FormatCollections Format = "collections"
)

// Settings holds reconciliation configuration.
type Settings struct {
	// Insurer is matched (case and accent insensitive, substring) against
	// the insurer-name column of both internal sources.
	Insurer string `validate:"required"`

	// Mode selects the internal sources to load.
	Mode Mode `validate:"oneof=both primary secondary"`

	// PrimaryFormat is the layout of the source that takes precedence.
	// The other layout is the secondary source.
	PrimaryFormat Format `validate:"oneof=policy_export collections"`

	// PrimaryName and SecondaryName are the origin tags written on records.
	PrimaryName   string `validate:"required"`
	SecondaryName string `validate:"required,nefield=PrimaryName"`

	// ReportDir is where report files are written. Empty disables files.
	ReportDir string

	// ArchiveEnabled stores each run in the run archive.
	ArchiveEnabled bool
}

// SecondaryFormat returns the layout not chosen as primary.
func (s *Settings) SecondaryFormat() Format {
	if s.PrimaryFormat == FormatCollections {
		return FormatPolicyExport
	}
	return FormatCollections
}

// NameFor returns the origin tag for a role.
func (s *Settings) NameFor(role Role) string {
	if role == RoleSecondary {
		return s.SecondaryName
	}
	return s.PrimaryName
}

// FormatFor returns the column layout used by a role.
func (s *Settings) FormatFor(role Role) Format {
	if role == RoleSecondary {
		return s.SecondaryFormat()
	}
	return s.PrimaryFormat
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	return Settings{
		Insurer:        "ALLIANZ",
		Mode:           ModeBoth,
		PrimaryFormat:  FormatPolicyExport,
		PrimaryName:    "SOFTSEGUROS",
		SecondaryName:  "CELER",
		ArchiveEnabled: true,
	}
}
