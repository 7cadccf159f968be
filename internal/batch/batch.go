// Package batch splits large imports into submission-sized chunks. The
// marketplace rejects bulk submissions above a fixed article count, so a big
// row set has to be committed page by page.
package batch

// MaxArticlesPerSubmission is the marketplace's cap on articles per bulk
// submission.
const MaxArticlesPerSubmission = 100

// Range is an inclusive 1-based slice of the selected rows.
type Range struct {
	Start int
	End   int
}

// Size returns the number of rows covered by the range.
func (r Range) Size() int {
	return r.End - r.Start + 1
}

// Split covers 1..total with ranges of at most size rows. A size below 1
// falls back to MaxArticlesPerSubmission. Returns no ranges for total <= 0.
func Split(total, size int) []Range {
	if size < 1 {
		size = MaxArticlesPerSubmission
	}
	if total <= 0 {
		return nil
	}

	ranges := make([]Range, 0, (total+size-1)/size)
	for start := 1; start <= total; start += size {
		end := start + size - 1
		if end > total {
			end = total
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}
