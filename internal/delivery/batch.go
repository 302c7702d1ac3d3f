package delivery

import "strings"

// MaxBatchSize is the number of links Discord will embed for a single message.
const MaxBatchSize = 5

// Batch is a group of rewritten links sent together as one reply.
type Batch struct {
	URLs  []string
	First bool
}

// Plural reports whether the batch announces more than one embed.
func (b Batch) Plural() bool {
	return len(b.URLs) > 1
}

// Text renders the reply body. Only the first batch of a message carries the
// announcement line, and its wording follows that batch's own size.
func (b Batch) Text() string {
	var sb strings.Builder
	if b.First {
		sb.WriteString("Beep boop, embed")
		if b.Plural() {
			sb.WriteString("s")
		}
		sb.WriteString(" incoming\n")
	}
	sb.WriteString(strings.Join(b.URLs, "\n"))
	return sb.String()
}

// Compose splits urls into batches of at most MaxBatchSize, keeping their order.
// It returns nil for empty input.
func Compose(urls []string) []Batch {
	var batches []Batch
	current := make([]string, 0, MaxBatchSize)
	for _, u := range urls {
		if len(current) == MaxBatchSize {
			batches = append(batches, Batch{URLs: current, First: len(batches) == 0})
			current = make([]string, 0, MaxBatchSize)
		}
		current = append(current, u)
	}
	if len(current) > 0 {
		batches = append(batches, Batch{URLs: current, First: len(batches) == 0})
	}
	return batches
}
