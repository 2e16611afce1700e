package render

// Bulma implements Framework for Bulma.
type Bulma struct{}

func (Bulma) Name() string { return "bulma" }

func (Bulma) StylesheetURL() string {
	return "https://cdn.jsdelivr.net/npm/bulma@1.0.2/css/bulma.min.css"
}

func (Bulma) Class(w Widget) string {
	switch w {
	case WidgetForm:
		return ""
	case WidgetField:
		return "field"
	case WidgetLabel:
		return "label"
	case WidgetInput:
		return "input"
	case WidgetTextarea:
		return "textarea"
	case WidgetSelect:
		return "select is-fullwidth"
	case WidgetCheckbox:
		return "checkbox"
	case WidgetHelpText:
		return "help"
	case WidgetError:
		return "help is-danger"
	case WidgetTable:
		return "table is-striped is-hoverable is-fullwidth"
	case WidgetTableWrap:
		return "table-container"
	case WidgetPagination:
		return "pagination-list"
	case WidgetPageItem:
		return ""
	case WidgetPageLink:
		return "pagination-link"
	default:
		return ""
	}
}

func (Bulma) ButtonClass(b Button) string {
	switch b {
	case ButtonPrimary:
		return "button is-primary"
	case ButtonSecondary:
		return "button"
	case ButtonSuccess:
		return "button is-success"
	case ButtonDanger:
		return "button is-danger"
	case ButtonWarning:
		return "button is-warning"
	case ButtonInfo:
		return "button is-info"
	default:
		return "button"
	}
}
