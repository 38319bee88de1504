package fetch

// Status is the kind of result a single fetch produced.
type Status int

const (
	// StatusNotFound means the page had no talent data. This covers HTTP 500,
	// unreachable hosts, unexpected status codes and pages without a link.
	StatusNotFound Status = iota
	// StatusFound means a talent string was extracted.
	StatusFound
	// StatusFailed means something abnormal happened that the caller should
	// surface: a body that could not be read after a 2xx, or no request slot.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// Outcome is the result of one Fetch call. Err is set only for StatusFailed.
type Outcome struct {
	Status Status
	Talent string
	Err    error
}

func Found(talent string) Outcome { return Outcome{Status: StatusFound, Talent: talent} }

func NotFound() Outcome { return Outcome{Status: StatusNotFound} }

func Failed(err error) Outcome { return Outcome{Status: StatusFailed, Err: err} }
