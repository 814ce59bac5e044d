package dom

import "errors"

// ErrTemplateNotFound and related errors describe substrate lookup failures.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrElementNotFound  = errors.New("element not found")
	ErrEmptyTemplate    = errors.New("template has no element")
	ErrNotDraggable     = errors.New("element is not draggable")
	ErrDragCancelled    = errors.New("drag cancelled by dragstart handler")
)
