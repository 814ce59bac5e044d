package board

import (
	_ "embed"
	"strings"

	"github.com/evanschultz/tavla/internal/dom"
)

//go:embed templates.html
var templatesHTML string

// Template and host names used by the board markup.
const (
	HostID           = "app"
	TemplateInput    = "project-input"
	TemplateColumn   = "project-list"
	TemplateItem     = "single-project"
	InputElementID   = "user-input"
	TransferType     = "text/plain"
	DroppableClass   = "droppable"
	InvalidInputText = "Invalid input, please try again..."
)

// NewDocument returns a document with the board templates loaded and an
// empty app host.
func NewDocument() (*dom.Document, error) {
	doc := dom.NewDocument(HostID)
	if err := doc.LoadTemplates(strings.NewReader(templatesHTML)); err != nil {
		return nil, err
	}
	return doc, nil
}

func setText(root *dom.Element, selector, text string) {
	if el := root.QuerySelector(selector); el != nil {
		el.SetText(text)
	}
}
