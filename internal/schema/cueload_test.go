package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactSchema = `
#Contact: {
	name:          string @label("Full Name")
	email:         string
	phone?:        string
	notes?:        string @text()
	age?:          int
	score?:        float
	active_client: bool | *true
	kind:          "lead" | "customer" | "partner" | *"lead"
	signup_date?:  string
	created_at?:   string @readonly()
}
`

func TestLoadBytes_Contact(t *testing.T) {
	resources, err := LoadBytes([]byte(contactSchema))
	require.NoError(t, err)
	require.Len(t, resources, 1)

	res := resources[0]
	assert.Equal(t, "contact", res.Name)
	assert.Equal(t, []string{
		"name", "email", "phone", "notes", "age", "score",
		"active_client", "kind", "signup_date", "created_at",
	}, res.FieldNames())
}

func TestLoadBytes_FieldClassification(t *testing.T) {
	resources, err := LoadBytes([]byte(contactSchema))
	require.NoError(t, err)
	res := resources[0]

	tests := []struct {
		field string
		typ   FieldType
	}{
		{"name", TypeText},
		{"notes", TypeLongText},
		{"age", TypeNumber},
		{"score", TypeDecimal},
		{"active_client", TypeBool},
		{"kind", TypeChoice},
		{"signup_date", TypeDate},
		{"created_at", TypeDateTime},
	}
	for _, tt := range tests {
		fd, ok := res.Field(tt.field)
		require.True(t, ok, "field %s", tt.field)
		assert.Equal(t, tt.typ, fd.Type, "field %s", tt.field)
	}
}

func TestLoadBytes_Attributes(t *testing.T) {
	resources, err := LoadBytes([]byte(contactSchema))
	require.NoError(t, err)
	res := resources[0]

	name, _ := res.Field("name")
	assert.Equal(t, "Full Name", name.Label)
	assert.True(t, name.Required)

	phone, _ := res.Field("phone")
	assert.False(t, phone.Required)
	assert.Equal(t, "Phone", phone.Label)

	created, _ := res.Field("created_at")
	assert.True(t, created.ReadOnly)
}

func TestLoadBytes_ChoicesAndDefaults(t *testing.T) {
	resources, err := LoadBytes([]byte(contactSchema))
	require.NoError(t, err)
	res := resources[0]

	kind, _ := res.Field("kind")
	require.Len(t, kind.Choices, 3)
	assert.Equal(t, "lead", kind.Choices[0].Value)
	assert.Equal(t, "Lead", kind.Choices[0].Label)
	assert.Equal(t, "lead", kind.Default)
	assert.False(t, kind.Required, "defaulted field is not required")

	active, _ := res.Field("active_client")
	assert.Equal(t, TypeBool, active.Type)
	assert.Equal(t, "true", active.Default)
}

func TestLoadBytes_Relation(t *testing.T) {
	src := `
#Company: {
	name: string
}
#Contact: {
	name:       string
	company_id: string @relation(company)
}
`
	resources, err := LoadBytes([]byte(src))
	require.NoError(t, err)
	require.Len(t, resources, 2)

	var contact *Resource
	for _, r := range resources {
		if r.Name == "contact" {
			contact = r
		}
	}
	require.NotNil(t, contact)
	fd, ok := contact.Field("company_id")
	require.True(t, ok)
	assert.Equal(t, TypeRelation, fd.Type)
	assert.Equal(t, "company", fd.Relation)
}

func TestLoadBytes_Errors(t *testing.T) {
	_, err := LoadBytes([]byte(`#Thing: { items: [...string] }`))
	assert.Error(t, err, "unsupported kind must fail fast")

	_, err = LoadBytes([]byte(`x: 1`))
	assert.Error(t, err, "no definitions means no resources")
}

func TestLoadBytes_SnakeCaseNames(t *testing.T) {
	resources, err := LoadBytes([]byte(`#PurchaseOrder: { name: string }`))
	require.NoError(t, err)
	assert.Equal(t, "purchase_order", resources[0].Name)
}
