// Package mutation is the write side of the SDK. Every state-changing chain
// operation (purchase, transfer, list-for-sale, refund, create-event) runs
// through an explicit Idle -> Pending -> Succeeded/Failed lifecycle: Pending
// rejects a second submission of the same logical action, confirmations are
// bounded by the configured receipt-wait timeout, and successful writes
// invalidate or optimistically patch the query layer's snapshots.
package mutation
