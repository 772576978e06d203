package buildinfo

var (
	// Version is set via ldflags at release time.
	Version = "dev"
	// Commit is set via ldflags at release time.
	Commit = "none"
	// Date is set via ldflags at release time.
	Date = "unknown"
)
