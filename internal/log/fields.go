package log

// Field names shared by every audit event. Pipelines key on these, so new
// events reuse them instead of inventing synonyms.
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldAccountID     = "account_id"
	FieldCategoryID    = "category_id"
	FieldTransactionID = "transaction_id"
	FieldRecurringID   = "recurring_id"
	FieldTransferID    = "transfer_id"
	FieldCurrency      = "currency"
	FieldAmountCents   = "amount_cents"
	FieldNextDueDate   = "next_due_date"
	FieldSheetsRef     = "sheets_ref"
)

// Component names, one per subsystem.
const (
	ComponentApp         = "app"
	ComponentAuth        = "auth"
	ComponentTransaction = "transaction"
	ComponentTransfer    = "transfer"
	ComponentRecurring   = "recurring"
	ComponentDashboard   = "dashboard"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentExport      = "export"
)

// Operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpTransfer = "transfer"
	OpProcess  = "process"
	OpSweep    = "sweep"
	OpExport   = "export"
)

// LogFields accumulates attributes for one audit record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

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

func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithTransaction adds the identifying fields of one posting.
func (f LogFields) WithTransaction(id, accountID, amountCents int64, currency string) LogFields {
	f[FieldTransactionID] = id
	f[FieldAccountID] = accountID
	f[FieldAmountCents] = amountCents
	f[FieldCurrency] = currency
	return f
}

// ToSlice flattens the map into slog's alternating key/value form.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
