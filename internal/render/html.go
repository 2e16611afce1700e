package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/matthewbaird/cruder/internal/form"
	"github.com/matthewbaird/cruder/internal/listing"
	"github.com/matthewbaird/cruder/internal/permission"
	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/store"
	"github.com/matthewbaird/cruder/internal/view"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
<div class="container" style="padding:1.5rem">
{{.Body}}
</div>
</body>
</html>
`))

var formTmpl = template.Must(template.New("form").Parse(`<form action="{{.Action}}" method="POST" class="{{.FormClass}}" novalidate>
{{range .FormErrors}}<div class="{{$.ErrorClass}}">{{.}}</div>
{{end}}{{range .Fields}}<div class="{{.FieldClass}}">
<label for="id_{{.Name}}" class="{{.LabelClass}}">{{.Label}}</label>
{{if eq .Kind "textarea"}}<textarea class="{{.ControlClass}}" name="{{.Name}}" id="id_{{.Name}}"{{if .Required}} required{{end}}{{if .ReadOnly}} disabled{{end}}>{{.Value}}</textarea>
{{else if eq .Kind "select"}}<select class="{{.ControlClass}}" name="{{.Name}}" id="id_{{.Name}}"{{if .Required}} required{{end}}{{if .ReadOnly}} disabled{{end}}>
{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{else}}<input type="{{.InputType}}" class="{{.ControlClass}}" name="{{.Name}}" id="id_{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}{{if .ReadOnly}} disabled{{end}}>
{{end}}{{if .HelpText}}<div class="{{.HelpClass}}">{{.HelpText}}</div>
{{end}}{{range .Errors}}<div class="{{.Class}}">{{.Message}}</div>
{{end}}</div>
{{end}}<button type="submit" class="{{.SubmitClass}}">{{.SubmitLabel}}</button>
<a href="{{.CancelURL}}" class="{{.CancelClass}}">Cancel</a>
</form>
`))

var listTmpl = template.Must(template.New("list").Parse(`<div class="crud-list-view">
<h2>{{.Title}}</h2>
{{if .CanCreate}}<a href="{{.CreateURL}}" class="{{.PrimaryClass}}">Add New</a>
{{end}}{{if .ShowSearch}}<form method="GET" style="margin:1rem 0">
<input type="text" name="q" class="{{.InputClass}}" placeholder="{{.SearchPlaceholder}}" value="{{.Query}}">
<button type="submit" class="{{.PrimaryClass}}">Search</button>
</form>
{{end}}<p>{{if .Rows}}Showing {{.Start}}-{{.End}} of {{.Total}} items{{else}}No items found{{end}}</p>
<div class="{{.WrapClass}}">
<table class="{{.TableClass}}">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}<th>Actions</th></tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .Cells}}<td>{{.}}</td>{{end}}<td>
{{if .CanRead}}<a href="{{.ViewURL}}" class="{{$.InfoClass}}">View</a>
{{end}}{{if .CanUpdate}}<a href="{{.EditURL}}" class="{{$.WarningClass}}">Edit</a>
{{end}}{{if .CanDelete}}<a href="{{.DeleteURL}}" class="{{$.DangerClass}}">Delete</a>
{{end}}</td></tr>
{{end}}</tbody>
</table>
</div>
{{if .ShowPagination}}<nav aria-label="Page navigation">
<ul class="{{.PaginationClass}}">
{{range .Pages}}<li class="{{.ItemClass}}">{{if .Current}}<span class="{{.LinkClass}}">{{.Label}}</span>{{else}}<a class="{{.LinkClass}}" href="{{.Href}}">{{.Label}}</a>{{end}}</li>
{{end}}</ul>
</nav>
{{end}}</div>
`))

var detailTmpl = template.Must(template.New("detail").Parse(`<div class="crud-detail-view">
<h2>{{.Title}}</h2>
<table class="{{.TableClass}}">
<tbody>
{{range .Rows}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</tbody>
</table>
{{if .ConfirmURL}}<form action="{{.ConfirmURL}}" method="POST" style="display:inline">
<button type="submit" class="{{.DangerClass}}">Confirm Delete</button>
</form>
{{end}}<a href="{{.BackURL}}" class="{{.SecondaryClass}}">Back to list</a>
</div>
`))

var statusTmpl = template.Must(template.New("status").Parse(`<div class="crud-status-view">
<h2>{{.Heading}}</h2>
<p>{{.Message}}</p>
{{if .BackURL}}<a href="{{.BackURL}}" class="{{.SecondaryClass}}">Back</a>
{{end}}</div>
`))

// Document wraps a body fragment in the full page shell for the framework.
func Document(fw Framework, title string, body template.HTML) (string, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title      string
		Stylesheet string
		Body       template.HTML
	}{title, fw.StylesheetURL(), body})
	if err != nil {
		return "", fmt.Errorf("rendering page shell: %w", err)
	}
	return buf.String(), nil
}

type fieldErrorView struct {
	Class   string
	Message string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name         string
	Label        string
	Value        string
	HelpText     string
	Required     bool
	ReadOnly     bool
	Kind         string // "input", "textarea", "select"
	InputType    string
	Options      []optionView
	FieldClass   string
	LabelClass   string
	ControlClass string
	HelpClass    string
	Errors       []fieldErrorView
}

// FormHTML renders the editable field set as a complete form fragment.
func FormHTML(fw Framework, f *form.Form, action, submitLabel, cancelURL string, formErrors []string) (template.HTML, error) {
	data := struct {
		Action      string
		FormClass   string
		ErrorClass  string
		SubmitClass string
		SubmitLabel string
		CancelClass string
		CancelURL   string
		FormErrors  []string
		Fields      []fieldView
	}{
		Action:      action,
		FormClass:   fw.Class(WidgetForm),
		ErrorClass:  fw.Class(WidgetError),
		SubmitClass: fw.ButtonClass(ButtonPrimary),
		SubmitLabel: submitLabel,
		CancelClass: fw.ButtonClass(ButtonSecondary),
		CancelURL:   cancelURL,
		FormErrors:  formErrors,
	}

	for _, fld := range f.Fields {
		fv := fieldView{
			Name:       fld.Name,
			Label:      fld.Label,
			Value:      fld.Value,
			HelpText:   fld.HelpText,
			Required:   fld.Required,
			ReadOnly:   fld.ReadOnly,
			FieldClass: fw.Class(WidgetField),
			LabelClass: fw.Class(WidgetLabel),
			HelpClass:  fw.Class(WidgetHelpText),
		}
		for _, msg := range fld.Errors {
			fv.Errors = append(fv.Errors, fieldErrorView{Class: fw.Class(WidgetError), Message: msg})
		}

		switch fld.Type {
		case schema.TypeLongText:
			fv.Kind = "textarea"
			fv.ControlClass = fw.Class(WidgetTextarea)
		case schema.TypeBool:
			fv.Kind = "select"
			fv.ControlClass = fw.Class(WidgetSelect)
			fv.Options = boolOptions(fld.Value, fld.Required)
		case schema.TypeChoice:
			fv.Kind = "select"
			fv.ControlClass = fw.Class(WidgetSelect)
			fv.Options = choiceOptions(fld.Choices, fld.Value, fld.Required)
		default:
			fv.Kind = "input"
			fv.ControlClass = fw.Class(WidgetInput)
			fv.InputType = inputType(fld.Type)
		}
		data.Fields = append(data.Fields, fv)
	}

	var buf bytes.Buffer
	if err := formTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering form: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func inputType(ft schema.FieldType) string {
	switch ft {
	case schema.TypeNumber, schema.TypeDecimal:
		return "number"
	case schema.TypeDate:
		return "date"
	case schema.TypeDateTime:
		return "datetime-local"
	case schema.TypeFile:
		return "file"
	default:
		return "text"
	}
}

func boolOptions(value string, required bool) []optionView {
	opts := []optionView{}
	if !required {
		opts = append(opts, optionView{Value: "", Label: "Choose...", Selected: value == ""})
	}
	opts = append(opts,
		optionView{Value: "true", Label: "Yes", Selected: value == "true"},
		optionView{Value: "false", Label: "No", Selected: value == "false"},
	)
	return opts
}

func choiceOptions(choices []schema.Choice, value string, required bool) []optionView {
	opts := []optionView{}
	if !required {
		opts = append(opts, optionView{Value: "", Label: "Choose...", Selected: value == ""})
	}
	for _, c := range choices {
		opts = append(opts, optionView{Value: c.Value, Label: c.Label, Selected: c.Value == value})
	}
	return opts
}

type rowView struct {
	Cells     []string
	ViewURL   string
	EditURL   string
	DeleteURL string
	CanRead   bool
	CanUpdate bool
	CanDelete bool
}

type pageLinkView struct {
	Label     string
	Href      string
	Current   bool
	ItemClass string
	LinkClass string
}

// ListHTML renders the complete list view: heading, add button, search
// form, result table with permission-aware action buttons, and pagination
// links that carry the active query.
func ListHTML(fw Framework, res *schema.Resource, cfg view.Config, page listing.Page, basePath string, allowed map[permission.Action]bool) (template.HTML, error) {
	columns := cfg.ListFieldNames(res)

	data := struct {
		Title             string
		CanCreate         bool
		CreateURL         string
		ShowSearch        bool
		SearchPlaceholder string
		Query             string
		Start, End, Total int
		Headers           []string
		Rows              []rowView
		ShowPagination    bool
		Pages             []pageLinkView
		PrimaryClass      string
		InfoClass         string
		WarningClass      string
		DangerClass       string
		InputClass        string
		WrapClass         string
		TableClass        string
		PaginationClass   string
	}{
		Title:             res.DisplayNamePlural,
		CanCreate:         allowed[permission.ActionCreate],
		CreateURL:         basePath + "/create",
		ShowSearch:        len(cfg.SearchFields) > 0,
		SearchPlaceholder: searchPlaceholder(cfg.SearchFields),
		Query:             page.Query,
		Start:             page.StartIndex(),
		End:               page.EndIndex(),
		Total:             page.TotalItems,
		ShowPagination:    page.TotalPages > 1,
		PrimaryClass:      fw.ButtonClass(ButtonPrimary),
		InfoClass:         fw.ButtonClass(ButtonInfo),
		WarningClass:      fw.ButtonClass(ButtonWarning),
		DangerClass:       fw.ButtonClass(ButtonDanger),
		InputClass:        fw.Class(WidgetInput),
		WrapClass:         fw.Class(WidgetTableWrap),
		TableClass:        fw.Class(WidgetTable),
		PaginationClass:   fw.Class(WidgetPagination),
	}

	for _, name := range columns {
		fd, _ := res.Field(name)
		data.Headers = append(data.Headers, fd.Label)
	}

	for _, rec := range page.Items {
		row := rowView{
			ViewURL:   fmt.Sprintf("%s/%s", basePath, rec.ID),
			EditURL:   fmt.Sprintf("%s/%s/edit", basePath, rec.ID),
			DeleteURL: fmt.Sprintf("%s/%s/delete", basePath, rec.ID),
			CanRead:   allowed[permission.ActionRead],
			CanUpdate: allowed[permission.ActionUpdate],
			CanDelete: allowed[permission.ActionDelete],
		}
		for _, name := range columns {
			fd, _ := res.Field(name)
			row.Cells = append(row.Cells, DisplayValue(fd, rec.Values[name]))
		}
		data.Rows = append(data.Rows, row)
	}

	if data.ShowPagination {
		data.Pages = paginationLinks(fw, page)
	}

	var buf bytes.Buffer
	if err := listTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering list: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func paginationLinks(fw Framework, page listing.Page) []pageLinkView {
	itemClass := fw.Class(WidgetPageItem)
	linkClass := fw.Class(WidgetPageLink)

	var links []pageLinkView
	if page.HasPrev() {
		links = append(links, pageLinkView{
			Label: "Previous", Href: page.Link(page.Number - 1),
			ItemClass: itemClass, LinkClass: linkClass,
		})
	}
	for _, n := range page.Numbers() {
		links = append(links, pageLinkView{
			Label:     fmt.Sprint(n),
			Href:      page.Link(n),
			Current:   n == page.Number,
			ItemClass: itemClass,
			LinkClass: linkClass,
		})
	}
	if page.HasNext() {
		links = append(links, pageLinkView{
			Label: "Next", Href: page.Link(page.Number + 1),
			ItemClass: itemClass, LinkClass: linkClass,
		})
	}
	return links
}

// searchPlaceholder builds the hint text from the searchable field names.
func searchPlaceholder(fields []string) string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = schema.Label(f)
	}
	switch {
	case len(labels) == 0:
		return "Search..."
	case len(labels) == 1:
		return fmt.Sprintf("Search %s...", labels[0])
	case len(labels) <= 3:
		return fmt.Sprintf("Search %s...", strings.Join(labels, ", "))
	default:
		return fmt.Sprintf("Search %s, and %d more...", strings.Join(labels[:2], ", "), len(labels)-2)
	}
}

type detailRow struct {
	Label string
	Value string
}

// DetailHTML renders one record read-only. When confirmURL is non-empty
// the view doubles as the delete confirmation page.
func DetailHTML(fw Framework, res *schema.Resource, cfg view.Config, rec store.Record, backURL, confirmURL string) (template.HTML, error) {
	data := struct {
		Title          string
		Rows           []detailRow
		TableClass     string
		BackURL        string
		ConfirmURL     string
		DangerClass    string
		SecondaryClass string
	}{
		Title:          res.DisplayName,
		TableClass:     fw.Class(WidgetTable),
		BackURL:        backURL,
		ConfirmURL:     confirmURL,
		DangerClass:    fw.ButtonClass(ButtonDanger),
		SecondaryClass: fw.ButtonClass(ButtonSecondary),
	}
	for _, fd := range res.Fields() {
		if cfg.IsExcluded(fd.Name) {
			continue
		}
		v := rec.Values[fd.Name]
		value := DisplayValue(fd, v)
		if v == nil || v == "" {
			value = "Not set"
		}
		data.Rows = append(data.Rows, detailRow{Label: fd.Label, Value: value})
	}

	var buf bytes.Buffer
	if err := detailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering detail: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// StatusHTML renders a user-visible status page (permission denied,
// not found).
func StatusHTML(fw Framework, heading, message, backURL string) (template.HTML, error) {
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, struct {
		Heading        string
		Message        string
		BackURL        string
		SecondaryClass string
	}{heading, message, backURL, fw.ButtonClass(ButtonSecondary)})
	if err != nil {
		return "", fmt.Errorf("rendering status page: %w", err)
	}
	return template.HTML(buf.String()), nil
}
