package extract

// Extractor converts raw HTML into a Document. Implementations must be
// deterministic and free of side effects so one value can serve concurrent
// requests.
type Extractor interface {
	Extract(input string, opts Options) (Document, error)
}

// TextExtractor keeps every visible text node; see Text.
type TextExtractor struct{}

func (TextExtractor) Extract(input string, opts Options) (Document, error) {
	return Text(input, opts)
}
