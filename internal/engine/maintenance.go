package engine

// PurgeOrphans clears task references to children that no longer exist.
// It is a pure consistency pass: safe to run repeatedly, and it never
// deletes a child, item, or purchase. Returns the number of cleared
// references.
func (e *Engine) PurgeOrphans() (int64, error) {
	n, err := e.tasks.ClearOrphanRefs()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.logger.Info("orphan references cleared", "count", n)
	}
	return n, nil
}
