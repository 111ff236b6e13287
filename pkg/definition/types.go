package definition

// Document is one definition file.
type Document struct {
	Resources []ResourceSpec `json:"resources" yaml:"resources"`
}

// ResourceSpec declares a resource.
type ResourceSpec struct {
	Name       string       `json:"name" yaml:"name"`
	Key        string       `json:"key,omitempty" yaml:"key,omitempty"`
	Title      string       `json:"title,omitempty" yaml:"title,omitempty"`
	TitleField string       `json:"titleField,omitempty" yaml:"titleField,omitempty"`
	Table      string       `json:"table,omitempty" yaml:"table,omitempty"`
	PrimaryKey string       `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	PerPage    int          `json:"perPage,omitempty" yaml:"perPage,omitempty"`
	Sort       *SortSpec    `json:"sort,omitempty" yaml:"sort,omitempty"`
	Actions    []string     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Fields     []FieldSpec  `json:"fields" yaml:"fields"`
	Filters    []FilterSpec `json:"filters,omitempty" yaml:"filters,omitempty"`
	Tags       []TagSpec    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SortSpec is the default index order.
type SortSpec struct {
	Column string `json:"column" yaml:"column"`
	Desc   bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// FieldSpec declares a field. Kind-specific keys are ignored by kinds that do
// not use them.
type FieldSpec struct {
	Kind         string            `json:"kind" yaml:"kind"`
	Label        string            `json:"label" yaml:"label"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Default      *string           `json:"default,omitempty" yaml:"default,omitempty"`
	Nullable     bool              `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	OldKey       string            `json:"oldKey,omitempty" yaml:"oldKey,omitempty"`
	Hint         string            `json:"hint,omitempty" yaml:"hint,omitempty"`
	Component    string            `json:"component,omitempty" yaml:"component,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	HideOn       []string          `json:"hideOn,omitempty" yaml:"hideOn,omitempty"`
	ShowWhen     string            `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
	NoContainer  bool              `json:"noContainer,omitempty" yaml:"noContainer,omitempty"`
	Choices      []ChoiceSpec      `json:"choices,omitempty" yaml:"choices,omitempty"`
	Multiple     bool              `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Format       string            `json:"format,omitempty" yaml:"format,omitempty"`
	InputFormat  string            `json:"inputFormat,omitempty" yaml:"inputFormat,omitempty"`
	WithTime     bool              `json:"withTime,omitempty" yaml:"withTime,omitempty"`
	OnValue      string            `json:"onValue,omitempty" yaml:"onValue,omitempty"`
	OffValue     string            `json:"offValue,omitempty" yaml:"offValue,omitempty"`
	Dir          string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL      string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	AllowHTML    bool              `json:"allowHTML,omitempty" yaml:"allowHTML,omitempty"`
	Resource     string            `json:"resource,omitempty" yaml:"resource,omitempty"`
	TitleField   string            `json:"titleField,omitempty" yaml:"titleField,omitempty"`
	ResourceMode bool              `json:"resourceMode,omitempty" yaml:"resourceMode,omitempty"`
	FullPage     bool              `json:"fullPage,omitempty" yaml:"fullPage,omitempty"`
	Fields       []FieldSpec       `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ChoiceSpec is one select option.
type ChoiceSpec struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FilterSpec declares an index filter.
type FilterSpec struct {
	Kind    string       `json:"kind" yaml:"kind"`
	Label   string       `json:"label" yaml:"label"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Default *string      `json:"default,omitempty" yaml:"default,omitempty"`
	Choices []ChoiceSpec `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// TagSpec declares a query tag as a list of AND-ed conditions.
type TagSpec struct {
	Label string          `json:"label" yaml:"label"`
	Icon  string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Where []ConditionSpec `json:"where,omitempty" yaml:"where,omitempty"`
}

// ConditionSpec is one query tag condition.
type ConditionSpec struct {
	Column   string `json:"column" yaml:"column"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}
