package bind_group_provider

// BufferWrite is a queued GPU buffer upload. The renderer batches these and
// flushes them before recording draw commands, so a frame's uniform updates
// land in one submission.
type BufferWrite struct {
	// Provider owns the destination buffer.
	Provider BindGroupProvider

	// Binding selects which of the provider's buffers to write.
	Binding int

	// Offset is the destination byte offset within the buffer.
	Offset uint64

	// Data is the raw bytes to upload.
	Data []byte
}
