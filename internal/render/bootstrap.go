package render

// Bootstrap implements Framework for Bootstrap 5.
type Bootstrap struct{}

func (Bootstrap) Name() string { return "bootstrap" }

func (Bootstrap) StylesheetURL() string {
	return "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"
}

func (Bootstrap) Class(w Widget) string {
	switch w {
	case WidgetForm:
		return "needs-validation"
	case WidgetField:
		return "mb-3"
	case WidgetLabel:
		return "form-label"
	case WidgetInput:
		return "form-control"
	case WidgetTextarea:
		return "form-control"
	case WidgetSelect:
		return "form-select"
	case WidgetCheckbox:
		return "form-check-input"
	case WidgetHelpText:
		return "form-text text-muted"
	case WidgetError:
		return "invalid-feedback d-block"
	case WidgetTable:
		return "table table-striped table-hover"
	case WidgetTableWrap:
		return "table-responsive"
	case WidgetPagination:
		return "pagination justify-content-center"
	case WidgetPageItem:
		return "page-item"
	case WidgetPageLink:
		return "page-link"
	default:
		return ""
	}
}

func (Bootstrap) ButtonClass(b Button) string {
	switch b {
	case ButtonPrimary:
		return "btn btn-primary"
	case ButtonSecondary:
		return "btn btn-secondary"
	case ButtonSuccess:
		return "btn btn-success"
	case ButtonDanger:
		return "btn btn-danger"
	case ButtonWarning:
		return "btn btn-warning"
	case ButtonInfo:
		return "btn btn-info"
	default:
		return "btn"
	}
}
