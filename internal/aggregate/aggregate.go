// Package aggregate maintains the denormalized rating fields stored on a
// post. The running mean is updated incrementally from the previous value
// instead of re-reading every review row.
package aggregate

// Next folds one new rating into the running mean. The result is exact
// under real arithmetic; with float64 it accumulates rounding error over
// very large review counts, which is acceptable for this domain.
func Next(average float64, count int64, rating int) (float64, int64) {
	newCount := count + 1
	newAverage := (average*float64(count) + float64(rating)) / float64(newCount)
	return newAverage, newCount
}
