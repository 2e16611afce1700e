// Package render maps abstract widget kinds to CSS-framework style tokens
// and builds the HTML fragments for list, form, detail and confirmation
// views. Frameworks are pluggable: implementations register by name at
// process start; selection is a pure lookup, and an unknown name is an
// error rather than a silent fallback.
package render

import "fmt"

// Widget is an abstract UI element the frameworks know how to style.
type Widget int

const (
	WidgetForm Widget = iota
	WidgetField
	WidgetLabel
	WidgetInput
	WidgetTextarea
	WidgetSelect
	WidgetCheckbox
	WidgetHelpText
	WidgetError
	WidgetTable
	WidgetTableWrap
	WidgetPagination
	WidgetPageItem
	WidgetPageLink
)

// Button is a styled button variant.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
	ButtonWarning
	ButtonInfo
)

// Framework supplies style tokens for one CSS framework.
type Framework interface {
	Name() string
	// Class returns the style token for a widget kind, "" when the
	// framework styles it implicitly.
	Class(Widget) string
	// ButtonClass returns the style token for a button variant.
	ButtonClass(Button) string
	// StylesheetURL returns the CDN stylesheet the page shell links.
	StylesheetURL() string
}

// UnknownFrameworkError reports a lookup for an unregistered framework.
// It is fatal at dispatch setup time.
type UnknownFrameworkError struct {
	Name string
}

func (e *UnknownFrameworkError) Error() string {
	return fmt.Sprintf("unknown CSS framework %q", e.Name)
}

// frameworks is the process-wide registry. It is populated during init and
// by Register calls at startup, and read-only once requests are served.
var frameworks = map[string]Framework{}

// Register adds a framework under its name. Registering a duplicate name
// is a programming error.
func Register(f Framework) {
	if _, dup := frameworks[f.Name()]; dup {
		panic("render: framework already registered: " + f.Name())
	}
	frameworks[f.Name()] = f
}

// Lookup returns the framework registered under name.
func Lookup(name string) (Framework, error) {
	f, ok := frameworks[name]
	if !ok {
		return nil, &UnknownFrameworkError{Name: name}
	}
	return f, nil
}

func init() {
	Register(Bootstrap{})
	Register(Bulma{})
}
