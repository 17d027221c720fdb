package dedupe

const defaultMaxSize = 50000

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of ids kept in memory.
// maxSize > 0 enables FIFO eviction; maxSize <= 0 disables it.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
