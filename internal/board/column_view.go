package board

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/component"
	"github.com/evanschultz/tavla/internal/dom"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

// ColumnView lists the items of one status and accepts dropped items.
type ColumnView struct {
	component.Base
	sub    component.Substrate
	store  *store.Store
	status domain.Status
	title  string
	logger *log.Logger

	assigned []domain.Item
	items    []*ItemView
	err      error

	onDragOver  dom.Listener
	onDragLeave dom.Listener
	onDrop      dom.Listener
}

// ColumnElementID returns the section id for a status column.
func ColumnElementID(status domain.Status) string {
	return string(status) + "-projects"
}

// ListID returns the list element id for a status column.
func ListID(status domain.Status) string {
	return string(status) + "-projects-list"
}

// DefaultColumnTitle returns the heading used when none is configured.
func DefaultColumnTitle(status domain.Status) string {
	return status.Label() + " PROJECTS"
}

func mountColumnView(sub component.Substrate, st *store.Store, status domain.Status, title string, logger *log.Logger) (*ColumnView, error) {
	return component.Mount(sub, component.Spec{
		Template:  TemplateColumn,
		HostID:    HostID,
		ElementID: ColumnElementID(status),
	}, func(b component.Base) *ColumnView {
		return &ColumnView{Base: b, sub: sub, store: st, status: status, title: title, logger: logger}
	})
}

// Status returns the column status.
func (v *ColumnView) Status() domain.Status {
	return v.status
}

// Title returns the rendered heading.
func (v *ColumnView) Title() string {
	return v.title
}

// Assigned returns the items currently shown, in store order.
func (v *ColumnView) Assigned() []domain.Item {
	return slices.Clone(v.assigned)
}

// ItemViews returns the mounted item views.
func (v *ColumnView) ItemViews() []*ItemView {
	return slices.Clone(v.items)
}

// List returns the list element holding the item views.
func (v *ColumnView) List() *dom.Element {
	return v.Element.QuerySelector("ul")
}

// Hovering reports whether an acceptable drag is over the column.
func (v *ColumnView) Hovering() bool {
	list := v.List()
	return list != nil && list.HasClass(DroppableClass)
}

// Err returns the last item render failure.
func (v *ColumnView) Err() error {
	return v.err
}

// Configure wires the drop target handlers and subscribes to the store.
func (v *ColumnView) Configure() {
	v.onDragOver = func(ev *dom.Event) {
		if !acceptsTransfer(ev.Transfer) {
			return
		}
		ev.PreventDefault()
		if list := v.List(); list != nil {
			list.AddClass(DroppableClass)
		}
	}
	v.onDragLeave = func(*dom.Event) {
		if list := v.List(); list != nil {
			list.RemoveClass(DroppableClass)
		}
	}
	v.onDrop = func(ev *dom.Event) {
		if list := v.List(); list != nil {
			list.RemoveClass(DroppableClass)
		}
		if ev.Transfer == nil {
			return
		}
		id := ev.Transfer.GetData(TransferType)
		moved := v.store.MoveItem(domain.TransitionRequest{ItemID: id, TargetStatus: v.status})
		v.logger.Debug("drop", "item_id", id, "status", v.status, "moved", moved)
	}
	v.Element.AddEventListener(dom.EventDragOver, v.onDragOver)
	v.Element.AddEventListener(dom.EventDragLeave, v.onDragLeave)
	v.Element.AddEventListener(dom.EventDrop, v.onDrop)

	v.store.Subscribe(func(items []domain.Item) {
		assigned := make([]domain.Item, 0, len(items))
		for _, it := range items {
			if it.Status == v.status {
				assigned = append(assigned, it)
			}
		}
		v.assigned = assigned
		v.renderItems()
	})
}

// RenderContent tags the list and writes the heading.
func (v *ColumnView) RenderContent() {
	if list := v.List(); list != nil {
		list.ID = ListID(v.status)
	}
	setText(v.Element, "h2", v.title)
}

func (v *ColumnView) renderItems() {
	list := v.List()
	if list == nil {
		return
	}
	list.ReplaceChildren()
	v.items = v.items[:0]
	v.err = nil
	for _, it := range v.assigned {
		view, err := mountItemView(v.sub, list.ID, it, v.logger)
		if err != nil {
			v.err = err
			v.logger.Error("render item failed", "item_id", it.ID, "status", v.status, "err", err)
			continue
		}
		v.items = append(v.items, view)
	}
}

// acceptsTransfer matches a transfer that carries exactly one plain-text item.
func acceptsTransfer(dt *dom.DataTransfer) bool {
	if dt == nil {
		return false
	}
	items := dt.Items()
	return len(items) == 1 && items[0].Type == TransferType
}
