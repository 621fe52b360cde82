package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldKey         = "key"
	FieldCollection  = "collection"
	FieldRecordID    = "record_id"
	FieldRevision    = "revision"
	FieldCount       = "count"
	FieldDropped     = "dropped"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldPath        = "path"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStore   = "store"
	ComponentTask    = "task"
	ComponentExpense = "expense"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentHTTP    = "http"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpFlush    = "flush"
	OpCreate   = "create"
	OpToggle   = "toggle"
	OpDelete   = "delete"
	OpSort     = "sort"
	OpExport   = "export"
	OpNotify   = "notify"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the collection and record identifier.
func (f LogFields) WithRecord(collection, id string) LogFields {
	f[FieldCollection] = collection
	if id != "" {
		f[FieldRecordID] = id
	}
	return f
}

func (f LogFields) WithKey(key string) LogFields {
	f[FieldKey] = key
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(amountCents int64, category string) LogFields {
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
