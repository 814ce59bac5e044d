package board

import (
	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/component"
	"github.com/evanschultz/tavla/internal/dom"
	"github.com/evanschultz/tavla/internal/domain"
)

// ItemView renders one item and acts as a drag source. It never subscribes to
// the store; its column rebuilds it.
type ItemView struct {
	component.Base
	item   domain.Item
	logger *log.Logger

	onDragStart dom.Listener
	onDragEnd   dom.Listener
}

func mountItemView(sub component.Substrate, hostID string, item domain.Item, logger *log.Logger) (*ItemView, error) {
	return component.Mount(sub, component.Spec{
		Template:  TemplateItem,
		HostID:    hostID,
		ElementID: item.ID,
	}, func(b component.Base) *ItemView {
		return &ItemView{Base: b, item: item, logger: logger}
	})
}

// Item returns the snapshot the view was built from.
func (v *ItemView) Item() domain.Item {
	return v.item
}

// Configure wires the drag source handlers.
func (v *ItemView) Configure() {
	v.onDragStart = func(ev *dom.Event) {
		if ev.Transfer == nil {
			return
		}
		ev.Transfer.SetData(TransferType, v.item.ID)
		ev.Transfer.EffectAllowed = "move"
	}
	v.onDragEnd = func(ev *dom.Event) {
		effect := ""
		if ev.Transfer != nil {
			effect = ev.Transfer.DropEffect
		}
		v.logger.Debug("drag end", "item_id", v.item.ID, "drop_effect", effect)
	}
	v.Element.AddEventListener(dom.EventDragStart, v.onDragStart)
	v.Element.AddEventListener(dom.EventDragEnd, v.onDragEnd)
}

// RenderContent writes title, assignment line and description.
func (v *ItemView) RenderContent() {
	setText(v.Element, "h2", v.item.Title)
	setText(v.Element, "h3", v.item.PeopleLabel())
	setText(v.Element, "p", v.item.Description)
}
