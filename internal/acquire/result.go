package acquire

// Outcome is the terminal state of one artifact
type Outcome int

const (
	// Fetched means a fresh download whose digest matched
	Fetched Outcome = iota + 1

	// CacheHit means the artifact was copied from the local cache
	CacheHit

	// Failed means every attempt was exhausted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Fetched:
		return "fetched"
	case CacheHit:
		return "cache-hit"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes what happened to one artifact
type Result struct {
	// Name is the display name used in the modlist
	Name string

	// FileName is the artifact's identity in the mods dir and the cache
	FileName string

	// Path is where the artifact was written
	Path string

	Outcome Outcome

	// Attempts counts fetch attempts; zero for cache hits
	Attempts int
}

// Names returns the display names of results in order
func Names(results []Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}

	return names
}
