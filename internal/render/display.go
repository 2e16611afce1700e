package render

import (
	"fmt"

	"github.com/matthewbaird/cruder/internal/schema"
)

// DisplayValue formats a stored value for list and detail views: booleans
// become Yes/No, choices show their label, and missing values a dash.
func DisplayValue(fd schema.FieldDescriptor, v any) string {
	if v == nil || v == "" {
		return "-"
	}
	switch fd.Type {
	case schema.TypeBool:
		if b, ok := v.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case schema.TypeChoice:
		if s, ok := v.(string); ok {
			for _, c := range fd.Choices {
				if c.Value == s {
					return c.Label
				}
			}
			return s
		}
	}
	return fmt.Sprint(v)
}
