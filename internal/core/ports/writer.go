package ports

// BatchWriter emits debounced event batches on the output channel.
// A batch is one or more record lines followed by the flush sentinel;
// implementations must keep each batch contiguous.
type BatchWriter interface {
	WriteBatch(lines []string) error
}
