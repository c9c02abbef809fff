package entity

// FieldType names the input widget family a column maps to.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumeric  FieldType = "numeric"
	FieldMoney    FieldType = "money"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
	FieldTime     FieldType = "timestamp"
)

// FieldSpec describes how one transaction column is edited, listed and shown.
type FieldSpec struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required"`
	ReadOnly   bool      `json:"read_only"`
	Default    any       `json:"default,omitempty"`
	Options    []string  `json:"options,omitempty"`
	Sortable   bool      `json:"sortable"`
	Searchable bool      `json:"searchable"`
	// Column is the qualified SQL expression used for search and sort.
	Column string `json:"-"`
	// Display names the derived value shown under the column in list views.
	Display string `json:"display,omitempty"`
}

// TransactionSchema is the field configuration shared by forms, tables and
// detail views.
var TransactionSchema = []FieldSpec{
	{Name: "user_id", Label: "Owner", Type: FieldNumeric, ReadOnly: true},
	{Name: "category_id", Label: "Type", Type: FieldSelect, Required: true, Searchable: true, Column: "category.name", Display: "category_subtitle"},
	{Name: "color_id", Label: "Color", Type: FieldSelect, Required: true},
	{Name: "status", Label: "Status", Type: FieldSelect, Default: string(StatusPending), Options: statusOptions()},
	{Name: "buyer_name", Label: "Buyer", Type: FieldText, Required: true, Searchable: true, Column: "t.buyer_name", Display: "buyer_subtitle"},
	{Name: "buyer_phone", Label: "Phone", Type: FieldNumeric, Required: true},
	{Name: "product_amount", Label: "Price", Type: FieldMoney, Required: true, Sortable: true, Column: "t.product_amount", Display: "price_subtitle"},
	{Name: "product_count", Label: "Quantity", Type: FieldNumeric, Required: true, Default: DefaultProductCount},
	{Name: "acrylic_mm", Label: "Acrylic (mm)", Type: FieldNumeric, Required: true, Default: DefaultAcrylicMM, Sortable: true, Column: "t.acrylic_mm"},
	{Name: "notes", Label: "Notes", Type: FieldTextarea, Required: true, Searchable: true, Column: "t.notes", Display: "notes_display"},
	{Name: "order_date", Label: "Order date", Type: FieldDate, Required: true, Default: "today", Sortable: true, Column: "t.order_date"},
	{Name: "created_at", Label: "Created", Type: FieldTime, ReadOnly: true, Sortable: true, Column: "t.created_at"},
	{Name: "updated_at", Label: "Updated", Type: FieldTime, ReadOnly: true, Sortable: true, Column: "t.updated_at"},
	{Name: "deleted_at", Label: "Deleted", Type: FieldTime, ReadOnly: true, Sortable: true, Column: "t.deleted_at"},
}

func statusOptions() []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// SortColumn resolves a sortable field name to its SQL column.
func SortColumn(name string) (string, bool) {
	for _, f := range TransactionSchema {
		if f.Name == name && f.Sortable {
			return f.Column, true
		}
	}
	return "", false
}

// SearchColumns returns the SQL columns free-text search runs against.
func SearchColumns() []string {
	var cols []string
	for _, f := range TransactionSchema {
		if f.Searchable {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

// RequiredFields lists fields that must be supplied on create.
func RequiredFields() []string {
	var names []string
	for _, f := range TransactionSchema {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
