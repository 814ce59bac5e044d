package board

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/component"
	"github.com/evanschultz/tavla/internal/dom"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(message string)

// Alert calls f(message).
func (f AlertFunc) Alert(message string) {
	f(message)
}

// Input field bounds.
const (
	DescriptionMinLength = 5
	PeopleMin            = 1
	PeopleMax            = 5
)

// InputView gathers the fields of a new item and adds it to the store.
type InputView struct {
	component.Base
	store   *store.Store
	alerter Alerter
	logger  *log.Logger

	titleInput       *dom.Element
	descriptionInput *dom.Element
	peopleInput      *dom.Element

	onSubmit dom.Listener
}

func mountInputView(sub component.Substrate, st *store.Store, alerter Alerter, logger *log.Logger) (*InputView, error) {
	return component.Mount(sub, component.Spec{
		Template:      TemplateInput,
		HostID:        HostID,
		InsertAtStart: true,
		ElementID:     InputElementID,
	}, func(b component.Base) *InputView {
		return &InputView{
			Base:             b,
			store:            st,
			alerter:          alerter,
			logger:           logger,
			titleInput:       b.Element.QuerySelector("#title"),
			descriptionInput: b.Element.QuerySelector("#description"),
			peopleInput:      b.Element.QuerySelector("#people"),
		}
	})
}

// Configure binds the submit handler to the form.
func (v *InputView) Configure() {
	v.onSubmit = func(ev *dom.Event) {
		ev.PreventDefault()
		title, description, people, ok := v.gather()
		if !ok {
			return
		}
		id := v.store.AddItem(title, description, people)
		v.logger.Info("item created", "item_id", id, "people", people)
		v.clear()
	}
	v.Element.AddEventListener(dom.EventSubmit, v.onSubmit)
}

// RenderContent has nothing to render; the form is static markup.
func (v *InputView) RenderContent() {}

// SetValues replaces the raw field values.
func (v *InputView) SetValues(title, description, people string) {
	setValue(v.titleInput, title)
	setValue(v.descriptionInput, description)
	setValue(v.peopleInput, people)
}

// Values returns the raw field values.
func (v *InputView) Values() (title, description, people string) {
	return value(v.titleInput), value(v.descriptionInput), value(v.peopleInput)
}

// Submit dispatches a submit event on the form.
func (v *InputView) Submit() {
	v.Element.Dispatch(dom.NewEvent(dom.EventSubmit))
}

func (v *InputView) gather() (string, string, int, bool) {
	title, description, rawPeople := v.Values()
	people := domain.ParseNumber(rawPeople)

	checks := []domain.Validatable{
		domain.TextValue(title).WithRequired(),
		domain.TextValue(description).WithRequired().WithMinLength(DescriptionMinLength),
		domain.NumberValue(people).WithRequired().WithMin(PeopleMin).WithMax(PeopleMax).WithInteger(),
	}
	for i, check := range checks {
		if !domain.Validate(check) {
			v.logger.Debug("input rejected", "field", fieldNames[i], "violations", check.Violations())
			v.alerter.Alert(InvalidInputText)
			return "", "", 0, false
		}
	}
	return title, description, int(math.Round(people)), true
}

var fieldNames = []string{"title", "description", "people"}

func (v *InputView) clear() {
	v.SetValues("", "", "")
}

func setValue(el *dom.Element, s string) {
	if el != nil {
		el.Value = s
	}
}

func value(el *dom.Element) string {
	if el == nil {
		return ""
	}
	return el.Value
}
