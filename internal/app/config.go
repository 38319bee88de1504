package app

// Config holds runtime configuration for the application.
type Config struct {
	// InputPath lists the builds to refresh (YAML, JSON or plain URL list).
	InputPath string
	// OutputPath receives the report; "-" means stdout.
	OutputPath string
	// Format of the report: "yaml" or "json".
	Format string

	// RequestsPerSecond paces how fast fetches start; 0 disables pacing.
	RequestsPerSecond float64

	// Behavior
	DryRun  bool
	Verbose bool
}

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)
