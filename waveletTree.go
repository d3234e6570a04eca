package watrix

// WaveletTree supports several range queries.
// *WaveletMatrix is the implementation provided by this package.
type WaveletTree interface {
	Num() uint64

	Dim() uint64

	BitWidth() uint64

	Access(pos uint64) uint64

	Rank(val uint64, ranze Range) uint64

	RankLessThan(pos uint64, val uint64) uint64

	RankMoreThan(pos uint64, val uint64) uint64

	RangedRankOp(ranze Range, val uint64, op int) uint64

	RangeFreq(ranze Range, valueRange Range) uint64

	Select(val uint64, rank uint64) uint64

	LookupAndRank(pos uint64) (uint64, uint64)

	Quantile(ranze Range, k uint64) uint64

	Intersect(ranges []Range, k int) []uint64

	MarshalBinary() ([]byte, error)

	UnmarshalBinary([]byte) error
}

// Builder builds WaveletTree from integer array.
// A user calls PushBack()s followed by Build().
type Builder interface {
	PushBack(val uint64)
	Build() *WaveletMatrix
}

var (
	_ WaveletTree = (*WaveletMatrix)(nil)
	_ Builder     = (*WaveletMatrixBuilder)(nil)
)
