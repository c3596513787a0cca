package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceOverdueScan re-derives payment statuses of past-due
	// invoices.
	TaskInvoiceOverdueScan = "invoice:overdue_scan"
)

// NewOverdueScanTask constructs an Asynq task. The scan carries no payload;
// it always re-derives every past-due invoice.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskInvoiceOverdueScan, nil)
}
