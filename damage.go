package bsontree

// DamageEvent describes one byte-level patch: copy Size bytes from the
// source buffer at SourceOffset over the target buffer at TargetOffset.
// Targets are offsets into the original input buffer; sources are
// offsets into the leaf builder buffer handed out alongside the events.
type DamageEvent struct {
	TargetOffset uint32
	SourceOffset uint32
	Size         uint32
}

// DamageVector is an ordered damage log.  Events apply in insertion
// order.
type DamageVector []DamageEvent

// Apply copies every event's bytes from source into target.
func (dv DamageVector) Apply(target, source []byte) {
	for _, ev := range dv {
		copy(target[ev.TargetOffset:ev.TargetOffset+ev.Size], source[ev.SourceOffset:ev.SourceOffset+ev.Size])
	}
}

// InPlaceUpdates hands the accumulated damage events to the caller
// together with the source buffer their source offsets refer to.  On
// success the internal log is reset, so in principle another round of
// in-place updates can follow.  It returns ok=false once any structural
// edit or ineligible replacement has disabled in-place mode.
func (d *Document) InPlaceUpdates() (damages DamageVector, source []byte, ok bool) {
	if !d.inPlace {
		return nil, nil, false
	}
	damages = d.damages
	d.damages = nil
	return damages, d.leaf, true
}

// DisableInPlaceUpdates irreversibly stops damage tracking.  Every
// structural edit and every ineligible value replacement calls this
// internally.
func (d *Document) DisableInPlaceUpdates() {
	d.disableInPlaceUpdates()
}

func (d *Document) disableInPlaceUpdates() {
	d.inPlace = false
	d.damages = nil
}

func (d *Document) recordDamage(targetOffset, sourceOffset, size uint32) {
	d.damages = append(d.damages, DamageEvent{
		TargetOffset: targetOffset,
		SourceOffset: sourceOffset,
		Size:         size,
	})
}
