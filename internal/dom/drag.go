package dom

// DragSession follows one drag gesture from dragstart to dragend. Drop only
// reaches a target whose most recent dragover was default-prevented.
type DragSession struct {
	source   *Element
	transfer *DataTransfer
	target   *Element
	accepted bool
	finished bool
}

// StartDrag fires dragstart on source and opens a session.
func StartDrag(source *Element) (*DragSession, error) {
	if source == nil {
		return nil, ErrElementNotFound
	}
	if !source.Draggable {
		return nil, ErrNotDraggable
	}
	transfer := NewDataTransfer()
	ev := &Event{Type: EventDragStart, Transfer: transfer}
	if !source.Dispatch(ev) {
		return nil, ErrDragCancelled
	}
	return &DragSession{source: source, transfer: transfer}, nil
}

// Source returns the dragged element.
func (d *DragSession) Source() *Element {
	return d.source
}

// Target returns the element currently under the drag, if any.
func (d *DragSession) Target() *Element {
	return d.target
}

// Transfer returns the payload carrier.
func (d *DragSession) Transfer() *DataTransfer {
	return d.transfer
}

// Accepted reports whether the current target accepted the last dragover.
func (d *DragSession) Accepted() bool {
	return d.accepted
}

// Over moves the drag onto target. A target change fires dragleave on the old
// target before dragover on the new one. A nil target leaves every element.
func (d *DragSession) Over(target *Element) {
	if d.finished {
		return
	}
	if d.target != nil && d.target != target {
		d.target.Dispatch(&Event{Type: EventDragLeave, Transfer: d.transfer})
	}
	d.target = target
	d.accepted = false
	if target == nil {
		return
	}
	ev := &Event{Type: EventDragOver, Transfer: d.transfer}
	d.accepted = !target.Dispatch(ev)
}

// Drop finishes the gesture, delivering drop to an accepting target, and
// reports whether a drop was delivered.
func (d *DragSession) Drop() bool {
	if d.finished {
		return false
	}
	d.finished = true
	dropped := false
	if d.target != nil && d.accepted {
		d.transfer.DropEffect = "move"
		d.target.Dispatch(&Event{Type: EventDrop, Transfer: d.transfer})
		dropped = true
	} else if d.target != nil {
		d.target.Dispatch(&Event{Type: EventDragLeave, Transfer: d.transfer})
	}
	if !dropped {
		d.transfer.DropEffect = "none"
	}
	d.source.Dispatch(&Event{Type: EventDragEnd, Transfer: d.transfer})
	return dropped
}

// Cancel aborts the gesture without a drop.
func (d *DragSession) Cancel() {
	if d.finished {
		return
	}
	d.finished = true
	if d.target != nil {
		d.target.Dispatch(&Event{Type: EventDragLeave, Transfer: d.transfer})
	}
	d.transfer.DropEffect = "none"
	d.source.Dispatch(&Event{Type: EventDragEnd, Transfer: d.transfer})
}

// Finished reports whether Drop or Cancel already ran.
func (d *DragSession) Finished() bool {
	return d.finished
}
