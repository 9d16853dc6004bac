// Package sanitizer normalizes caller-supplied strings before they reach
// validation or storage. Validation proper stays in the per-service
// validator packages; this only strips noise.
package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}
