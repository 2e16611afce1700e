// Package seed inserts demo records so a fresh database has something
// to browse. Seeding is idempotent: a store that already holds records
// is left alone.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/store"
)

// Demo inserts count generated records for res unless the store already
// has data.
func Demo(ctx context.Context, res *schema.Resource, st store.Store, count int) error {
	existing, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing records: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for i := 1; i <= count; i++ {
		rec := store.NewRecord(demoValues(res, i))
		if err := st.Insert(ctx, rec); err != nil {
			return fmt.Errorf("seeding %s %d: %w", res.Name, i, err)
		}
	}
	return nil
}

func demoValues(res *schema.Resource, i int) map[string]any {
	values := make(map[string]any)
	for _, fd := range res.Fields() {
		if fd.ReadOnly {
			continue
		}
		if !fd.Required && i%3 == 0 {
			// Leave some optional fields unset so the detail view
			// shows its placeholder.
			continue
		}
		values[fd.Name] = demoValue(res.Name, fd, i)
	}
	return values
}

func demoValue(resource string, fd schema.FieldDescriptor, i int) any {
	switch fd.Type {
	case schema.TypeNumber:
		return int64(i * 7)
	case schema.TypeDecimal:
		return float64(i) * 9.5
	case schema.TypeBool:
		return i%2 == 1
	case schema.TypeDate:
		return time.Now().AddDate(0, 0, -i).Format("2006-01-02")
	case schema.TypeDateTime:
		return time.Now().Add(-time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
	case schema.TypeChoice:
		if len(fd.Choices) > 0 {
			return fd.Choices[(i-1)%len(fd.Choices)].Value
		}
		return ""
	case schema.TypeLongText:
		return fmt.Sprintf("Generated notes for %s %d.", resource, i)
	default:
		if strings.Contains(fd.Name, "email") {
			return fmt.Sprintf("%s%d@example.com", resource, i)
		}
		if strings.Contains(fd.Name, "url") || strings.Contains(fd.Name, "website") {
			return fmt.Sprintf("https://%s%d.example.com", resource, i)
		}
		return fmt.Sprintf("%s %s %d", schema.Label(resource), fd.Label, i)
	}
}
