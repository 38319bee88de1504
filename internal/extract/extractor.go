package extract

// Extractor defines a minimal interface for talent string extraction.
// Implementations must be deterministic and free of I/O.
type Extractor interface {
	// Extract returns the talent string found in raw HTML, if any.
	Extract(input []byte) (string, bool)
}

// LinkExtractor takes the talent string from the first talent calculator
// anchor, see TalentString.
type LinkExtractor struct{}

func (LinkExtractor) Extract(input []byte) (string, bool) {
	return TalentString(input)
}
