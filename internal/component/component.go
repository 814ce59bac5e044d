// Package component mounts views built from templates into host elements and
// drives their configure and render steps.
package component

import (
	"errors"
	"fmt"

	"github.com/evanschultz/tavla/internal/dom"
)

// ErrConfiguration reports a missing template or host. It is fatal for the
// component being mounted.
var ErrConfiguration = errors.New("component configuration")

// Substrate creates and locates elements.
type Substrate interface {
	ImportTemplate(name string) (*dom.Element, error)
	ElementByID(id string) (*dom.Element, error)
}

// Lifecycle is implemented by every mounted view.
type Lifecycle interface {
	Configure()
	RenderContent()
}

// Spec names the template, the host and the placement of a component.
type Spec struct {
	Template      string
	HostID        string
	InsertAtStart bool
	ElementID     string
}

// Base carries the host and the attached root element of a view.
type Base struct {
	Host    *dom.Element
	Element *dom.Element
}

// Attach instantiates spec.Template and inserts it into spec.HostID.
func Attach(sub Substrate, spec Spec) (Base, error) {
	host, err := sub.ElementByID(spec.HostID)
	if err != nil {
		return Base{}, fmt.Errorf("%w: host %q: %w", ErrConfiguration, spec.HostID, err)
	}
	el, err := sub.ImportTemplate(spec.Template)
	if err != nil {
		return Base{}, fmt.Errorf("%w: template %q: %w", ErrConfiguration, spec.Template, err)
	}
	if spec.ElementID != "" {
		el.ID = spec.ElementID
	}
	pos := dom.BeforeEnd
	if spec.InsertAtStart {
		pos = dom.AfterBegin
	}
	host.InsertAdjacent(pos, el)
	return Base{Host: host, Element: el}, nil
}

// Mount attaches the component, builds the concrete view and runs Configure
// then RenderContent exactly once.
func Mount[T Lifecycle](sub Substrate, spec Spec, build func(Base) T) (T, error) {
	var zero T
	base, err := Attach(sub, spec)
	if err != nil {
		return zero, err
	}
	view := build(base)
	view.Configure()
	view.RenderContent()
	return view, nil
}
