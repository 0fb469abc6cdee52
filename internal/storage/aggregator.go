// Package storage derives per-product inventory quantities from the live
// document set. The snapshot is never persisted; it is recomputed on every
// read, which keeps it trivially safe under concurrent access.
package storage

import "docflow/internal/model"

// Info holds the two derived quantities for one product.
type Info struct {
	InStorage       int `json:"in_storage"`
	AboutToTransfer int `json:"about_to_transfer"`
}

// Snapshot maps product name to its derived quantities.
type Snapshot map[string]Info

// ComputeSnapshot folds the current Payment, Receipt and Delivery
// documents into a snapshot keyed by registered product names. Suspended
// documents are excluded by the callers' queries; everything else
// contributes to inStorage when fully approved, otherwise to
// aboutToTransfer. Line items referencing a name absent from
// productNames come from deleted products and are skipped; the count of
// such orphaned lines is returned for diagnostics.
func ComputeSnapshot(productNames []string, payments, receipts, deliveries []model.Document) (Snapshot, int) {
	snapshot := make(Snapshot, len(productNames))
	for _, name := range productNames {
		snapshot[name] = Info{}
	}
	orphans := 0

	add := func(name string, amount int, settled bool) {
		info, ok := snapshot[name]
		if !ok {
			orphans++
			return
		}
		if settled {
			info.InStorage += amount
		} else {
			info.AboutToTransfer += amount
		}
		snapshot[name] = info
	}

	// Incoming, committed via payment documents: each appended purchasing
	// document's lines count as settled only when the payment is fully
	// approved (stage-aware).
	for _, doc := range payments {
		settled := fullyApproved(&doc)
		for _, purchasing := range doc.AppendedPurchasings {
			for _, item := range purchasing.Items {
				add(item.ProductName, item.Amount, settled)
			}
		}
	}

	// Incoming, physically received.
	for _, doc := range receipts {
		settled := doc.Status == model.StatusApproved
		for _, item := range doc.Items {
			add(item.ProductName, item.Amount, settled)
		}
	}

	// Outgoing deliveries, stage-aware like payments.
	for _, doc := range deliveries {
		settled := fullyApproved(&doc)
		for _, item := range doc.Items {
			add(item.ProductName, -item.Amount, settled)
		}
	}

	// Negative inventory is not representable; over-delivery and stale
	// data are absorbed by flooring at zero.
	for name, info := range snapshot {
		if info.InStorage < 0 {
			info.InStorage = 0
		}
		if info.AboutToTransfer < 0 {
			info.AboutToTransfer = 0
		}
		snapshot[name] = info
	}

	return snapshot, orphans
}

// fullyApproved reports whether a document's quantities are settled: with
// stages, every stage and the document itself must be approved; without
// stages, the document status alone decides.
func fullyApproved(doc *model.Document) bool {
	if len(doc.Stages) == 0 {
		return doc.Status == model.StatusApproved
	}
	for _, stage := range doc.Stages {
		if stage.Status != model.StatusApproved {
			return false
		}
	}
	return doc.Status == model.StatusApproved
}
