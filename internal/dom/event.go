package dom

// Event type names dispatched by the substrate.
const (
	EventSubmit    = "submit"
	EventDragStart = "dragstart"
	EventDragOver  = "dragover"
	EventDragLeave = "dragleave"
	EventDrop      = "drop"
	EventDragEnd   = "dragend"
)

// Listener handles one dispatched event.
type Listener func(*Event)

// Event travels from its target up through the ancestors.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Transfer      *DataTransfer

	defaultPrevented bool
	stopped          bool
}

// NewEvent builds an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// StopPropagation keeps the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// AddEventListener registers fn for events of type typ on e.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if fn == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = map[string][]Listener{}
	}
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// Dispatch delivers ev to e and then to each ancestor, and reports whether the
// default action is still allowed.
func (e *Element) Dispatch(ev *Event) bool {
	ev.Target = e
	for n := e; n != nil && !ev.stopped; n = n.parent {
		ev.CurrentTarget = n
		for _, fn := range n.listeners[ev.Type] {
			fn(ev)
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}
