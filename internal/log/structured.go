package log

import "context"

// StructuredLogger emits the domain audit events with a fixed field
// vocabulary, so log pipelines can filter on component/operation pairs.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogTransactionCreated logs a successfully booked transaction.
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, id, accountID, amountCents int64, currency string, userID int64) {
	fields := NewFields().
		WithTransaction(id, accountID, amountCents, currency).
		WithUser(userID).
		WithOperation(OpCreate)

	sl.logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

// LogTransferBooked logs both legs of a completed transfer.
func (sl *StructuredLogger) LogTransferBooked(ctx context.Context, transferID string, outID, inID, userID int64, rate float64) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpTransfer)
	fields[FieldTransferID] = transferID
	fields["expense_id"] = outID
	fields["income_id"] = inID
	fields["exchange_rate"] = rate

	sl.logger.InfoContext(ctx, "Transfer booked", fields.ToSlice()...)
}

// LogRecurringFired logs one booked occurrence of a schedule.
func (sl *StructuredLogger) LogRecurringFired(ctx context.Context, recurringID, transactionID, userID int64, nextDue string, active bool) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpProcess)
	fields[FieldRecurringID] = recurringID
	fields[FieldTransactionID] = transactionID
	fields[FieldNextDueDate] = nextDue
	fields["is_active"] = active

	sl.logger.InfoContext(ctx, "Recurring transaction fired", fields.ToSlice()...)
}

// LogTransactionExported logs a row landing in the spreadsheet.
func (sl *StructuredLogger) LogTransactionExported(ctx context.Context, id int64, sheetsRef string) {
	fields := NewFields().
		WithOperation(OpExport)
	fields[FieldTransactionID] = id
	fields[FieldSheetsRef] = sheetsRef

	sl.logger.InfoContext(ctx, "Transaction exported", fields.ToSlice()...)
}

// LogError logs an error with structured context.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
