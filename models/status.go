package models

import "strings"

// OrderStatus is the sales order lifecycle value. CurrentDepartment must stay
// consistent with it; both only change through workflow operations.
type OrderStatus string

const (
	OrderCreated                    OrderStatus = "CREATED"
	OrderDesignInReview             OrderStatus = "DESIGN_IN_REVIEW"
	OrderDesignApproved             OrderStatus = "DESIGN_APPROVED"
	OrderDesignQuery                OrderStatus = "DESIGN_QUERY"
	OrderMaterialPurchaseInProgress OrderStatus = "MATERIAL_PURCHASE_IN_PROGRESS"
	OrderMaterialReady              OrderStatus = "MATERIAL_READY"
	OrderInProduction               OrderStatus = "IN_PRODUCTION"
	OrderProductionCompleted        OrderStatus = "PRODUCTION_COMPLETED"
	OrderQCInProgress               OrderStatus = "QC_IN_PROGRESS"
	OrderQCRejected                 OrderStatus = "QC_REJECTED"
	OrderQCApproved                 OrderStatus = "QC_APPROVED"
	OrderReadyForShipment           OrderStatus = "READY_FOR_SHIPMENT"
	OrderReadyForDispatch           OrderStatus = "READY_FOR_DISPATCH"
	OrderDispatched                 OrderStatus = "DISPATCHED"
	OrderCompleted                  OrderStatus = "COMPLETED"
)

var KnownOrderStatuses = []OrderStatus{
	OrderCreated, OrderDesignInReview, OrderDesignApproved, OrderDesignQuery,
	OrderMaterialPurchaseInProgress, OrderMaterialReady, OrderInProduction,
	OrderProductionCompleted, OrderQCInProgress, OrderQCRejected, OrderQCApproved,
	OrderReadyForShipment, OrderReadyForDispatch, OrderDispatched, OrderCompleted,
}

type Department string

const (
	DeptSales       Department = "SALES"
	DeptInventory   Department = "INVENTORY"
	DeptDesign      Department = "DESIGN_ENG"
	DeptProcurement Department = "PROCUREMENT"
	DeptProduction  Department = "PRODUCTION"
	DeptQuality     Department = "QUALITY"
	DeptShipment    Department = "SHIPMENT"
)

type ItemStatus string

const (
	ItemPending  ItemStatus = "PENDING"
	ItemAccepted ItemStatus = "ACCEPTED"
	ItemRejected ItemStatus = "REJECTED"
)

type ItemType string

const (
	ItemTypeFG  ItemType = "FG"
	ItemTypeSA  ItemType = "SA"
	ItemTypeSFG ItemType = "SFG"
	ItemTypeRM  ItemType = "RM"
)

// InferItemType derives the item type from the item code prefix. FG is the
// fallback; SFG must be checked before SA so "SFG-" does not match "S".
func InferItemType(itemCode string) ItemType {
	code := strings.ToUpper(itemCode)
	switch {
	case strings.HasPrefix(code, "SFG"):
		return ItemTypeSFG
	case strings.HasPrefix(code, "SA"):
		return ItemTypeSA
	case strings.HasPrefix(code, "RM"):
		return ItemTypeRM
	default:
		return ItemTypeFG
	}
}

type DesignOrderStatus string

const (
	DesignInDesign DesignOrderStatus = "IN_DESIGN"
	DesignApproved DesignOrderStatus = "APPROVED"
	DesignRejected DesignOrderStatus = "REJECTED"
)

// GRNStatus is the header-level projection of a receipt's line statuses.
type GRNStatus string

const (
	GRNReceived          GRNStatus = "RECEIVED"
	GRNPartiallyAccepted GRNStatus = "PARTIALLY_ACCEPTED"
	GRNRejected          GRNStatus = "REJECTED"
)

type GRNItemStatus string

const (
	GRNItemReceived       GRNItemStatus = "RECEIVED"
	GRNItemExcessAccepted GRNItemStatus = "EXCESS_ACCEPTED"
	GRNItemApproved       GRNItemStatus = "APPROVED"
	GRNItemAccepted       GRNItemStatus = "ACCEPTED"
	GRNItemPassed         GRNItemStatus = "PASSED"
	GRNItemRejected       GRNItemStatus = "REJECTED"
	GRNItemShortage       GRNItemStatus = "SHORTAGE"
)

// AcceptedGRNItemStatuses are the statuses whose accepted_qty counts toward
// a PO line's total_accepted.
var AcceptedGRNItemStatuses = []GRNItemStatus{
	GRNItemReceived, GRNItemExcessAccepted, GRNItemApproved,
	GRNItemAccepted, GRNItemPassed, GRNItemShortage,
}

type POItemStatus string

const (
	POItemOpen   POItemStatus = "OPEN"
	POItemClosed POItemStatus = "CLOSED"
	POItemExcess POItemStatus = "EXCESS"
)

type POStatus string

const (
	POOrdered           POStatus = "ORDERED"
	POPartiallyReceived POStatus = "PARTIALLY_RECEIVED"
	POCompleted         POStatus = "COMPLETED"
)

type ExcessApprovalStatus string

const (
	ExcessPending  ExcessApprovalStatus = "PENDING"
	ExcessApproved ExcessApprovalStatus = "APPROVED"
	ExcessRejected ExcessApprovalStatus = "REJECTED"
)

type LedgerDirection string

const (
	DirectionIn         LedgerDirection = "IN"
	DirectionOut        LedgerDirection = "OUT"
	DirectionAdjustment LedgerDirection = "ADJUSTMENT"
)

// PostingType describes why a ledger entry exists. REJECTION entries are an
// audit annotation only and never move the stock balance.
type PostingType string

const (
	PostingGRNReceipt    PostingType = "GRN_RECEIPT"
	PostingExcessReceipt PostingType = "EXCESS_RECEIPT"
	PostingDispatchIssue PostingType = "DISPATCH_ISSUE"
	PostingAdjustment    PostingType = "ADJUSTMENT"
	PostingRejection     PostingType = "REJECTION"
)

type ShipmentStatus string

const (
	ShipmentPendingAcceptance    ShipmentStatus = "PENDING_ACCEPTANCE"
	ShipmentAccepted             ShipmentStatus = "ACCEPTED"
	ShipmentPlanning             ShipmentStatus = "PLANNING"
	ShipmentPlanned              ShipmentStatus = "PLANNED"
	ShipmentReadyToDispatch      ShipmentStatus = "READY_TO_DISPATCH"
	ShipmentDispatched           ShipmentStatus = "DISPATCHED"
	ShipmentInTransit            ShipmentStatus = "IN_TRANSIT"
	ShipmentOutForDelivery       ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentDelivered            ShipmentStatus = "DELIVERED"
	ShipmentClosed               ShipmentStatus = "CLOSED"
	ShipmentReturnInitiated      ShipmentStatus = "RETURN_INITIATED"
	ShipmentReturnPickupAssigned ShipmentStatus = "RETURN_PICKUP_ASSIGNED"
	ShipmentReturnInTransit      ShipmentStatus = "RETURN_IN_TRANSIT"
	ShipmentReturnReceived       ShipmentStatus = "RETURN_RECEIVED"
	ShipmentReturnCompleted      ShipmentStatus = "RETURN_COMPLETED"
	ShipmentRejected             ShipmentStatus = "REJECTED"
	ShipmentCancelled            ShipmentStatus = "CANCELLED"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)
