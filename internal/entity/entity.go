package entity

// FieldType enumerates the value types a schema field may declare.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeDate
	// TypeStringOrInt accepts either form and keeps whichever was sent
	// (phone numbers arrive as both from existing clients).
	TypeStringOrInt
)

// FieldSpec declares one named field of an entity schema.
// Order matters: validation walks specs in declaration order and reports
// the first violation only.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool      // enforced on create, ignored on partial update
	Min      *int64    // lower bound for TypeInt fields
	Format   string    // extra string format check ("email"), empty = none
	Enum     []string  // allowed values for string fields, empty = free-form
}

// Schema is an ordered field list for one entity.
type Schema []FieldSpec

// UpdateStrategy selects how PUT/PATCH is applied to a stored document.
type UpdateStrategy int

const (
	// UpdateMerge overwrites only the supplied fields ($set semantics).
	UpdateMerge UpdateStrategy = iota
	// UpdateReplace overwrites the whole document; the request body must be
	// a full, create-valid payload. Used by the legacy collections.
	UpdateReplace
)

// Descriptor describes one exposed entity collection. Each concrete entity
// is a catalog row; the HTTP layer is generic over descriptors.
type Descriptor struct {
	Name       string // singular label used in messages ("department")
	Collection string // store collection and URL path segment
	Protected  bool   // mutations require an authenticated caller
	Update     UpdateStrategy
	Schema     Schema
}

func i64(v int64) *int64 { return &v }

// Catalog returns the entity descriptors served by the API.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:       "department",
			Collection: "departments",
			Protected:  true,
			Update:     UpdateMerge,
			Schema: Schema{
				{Name: "departmentName", Type: TypeString, Required: true},
				{Name: "manager", Type: TypeString, Required: true},
				{Name: "totalEmployees", Type: TypeInt, Required: true, Min: i64(0)},
				{Name: "location", Type: TypeString, Required: true},
			},
		},
		{
			Name:       "employee",
			Collection: "employees",
			Update:     UpdateMerge,
			Schema: Schema{
				{Name: "fullName", Type: TypeString, Required: true},
				{Name: "phoneNumber", Type: TypeStringOrInt, Required: true},
				{Name: "hireDate", Type: TypeDate, Required: true},
				{Name: "department", Type: TypeString, Required: true},
				{Name: "employmentStatus", Type: TypeString, Required: true},
				{Name: "role", Type: TypeString, Required: true},
				{Name: "address", Type: TypeString, Required: true},
			},
		},
		{
			Name:       "personal_info",
			Collection: "personal_info",
			Update:     UpdateReplace,
			Schema: Schema{
				{Name: "firstName", Type: TypeString, Required: true},
				{Name: "lastName", Type: TypeString, Required: true},
				{Name: "email", Type: TypeString, Required: true, Format: "email"},
				{Name: "favColor", Type: TypeString, Required: true},
				{Name: "birthday", Type: TypeDate, Required: true},
			},
		},
		{
			// same field set as personal_info; a distinct collection kept for
			// compatibility with existing data
			Name:       "employment_details",
			Collection: "employment_details",
			Update:     UpdateReplace,
			Schema: Schema{
				{Name: "firstName", Type: TypeString, Required: true},
				{Name: "lastName", Type: TypeString, Required: true},
				{Name: "email", Type: TypeString, Required: true, Format: "email"},
				{Name: "favColor", Type: TypeString, Required: true},
				{Name: "birthday", Type: TypeDate, Required: true},
			},
		},
	}
}
