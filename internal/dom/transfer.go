package dom

import "slices"

// TransferItem describes one payload entry carried by a drag.
type TransferItem struct {
	Kind string
	Type string
}

// DataTransfer carries typed string payloads from drag source to drop target.
type DataTransfer struct {
	EffectAllowed string
	DropEffect    string

	entries []transferEntry
}

type transferEntry struct {
	typ  string
	data string
}

// NewDataTransfer returns an empty carrier.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{EffectAllowed: "uninitialized", DropEffect: "none"}
}

// SetData stores data under typ, replacing an earlier value of the same type.
func (d *DataTransfer) SetData(typ, data string) {
	if i := slices.IndexFunc(d.entries, func(e transferEntry) bool { return e.typ == typ }); i >= 0 {
		d.entries[i].data = data
		return
	}
	d.entries = append(d.entries, transferEntry{typ: typ, data: data})
}

// GetData returns the payload stored under typ, or "".
func (d *DataTransfer) GetData(typ string) string {
	if i := slices.IndexFunc(d.entries, func(e transferEntry) bool { return e.typ == typ }); i >= 0 {
		return d.entries[i].data
	}
	return ""
}

// Items lists the payload entries in the order they were set.
func (d *DataTransfer) Items() []TransferItem {
	out := make([]TransferItem, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, TransferItem{Kind: "string", Type: e.typ})
	}
	return out
}

// ClearData removes every payload.
func (d *DataTransfer) ClearData() {
	d.entries = nil
}
