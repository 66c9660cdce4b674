package rendering

import "fmt"

// TemplateError reports a missing report template or a failure executing one
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	msg := fmt.Sprintf("template %s: %s", e.Template, e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError is returned when a report cannot be rendered from its input
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return "cannot render report: " + e.Message + ": " + e.Cause.Error()
	}
	return "cannot render report: " + e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
