package types

// SubscriptionState is the lifecycle state of a meal subscription.
// The literal values (including their casing) are wire and database
// compatible with the legacy system; do not normalize them.
type SubscriptionState string

const (
	SubscriptionStatePendingPayment  SubscriptionState = "pending_payment"
	SubscriptionStatePendingApproval SubscriptionState = "Pending_Approval"
	SubscriptionStateNewJoiner       SubscriptionState = "New_Joiner"
	SubscriptionStateCurious         SubscriptionState = "Curious"
	SubscriptionStateActive          SubscriptionState = "Active"
	SubscriptionStateFrozen          SubscriptionState = "Frozen"
	SubscriptionStateExiting         SubscriptionState = "Exiting"
	SubscriptionStateCancelled       SubscriptionState = "cancelled"
	SubscriptionStateExpired         SubscriptionState = "expired"
)

// AllSubscriptionStates lists every known state.
func AllSubscriptionStates() []SubscriptionState {
	return []SubscriptionState{
		SubscriptionStatePendingPayment,
		SubscriptionStatePendingApproval,
		SubscriptionStateNewJoiner,
		SubscriptionStateCurious,
		SubscriptionStateActive,
		SubscriptionStateFrozen,
		SubscriptionStateExiting,
		SubscriptionStateCancelled,
		SubscriptionStateExpired,
	}
}

// Terminal reports whether no further transitions are permitted.
func (s SubscriptionState) Terminal() bool {
	return s == SubscriptionStateCancelled || s == SubscriptionStateExpired
}

// Known reports whether s is one of the defined states.
func (s SubscriptionState) Known() bool {
	for _, st := range AllSubscriptionStates() {
		if st == s {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodWireTransfer PaymentMethod = "wire_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

// MealSlot is a delivery slot within a day.
type MealSlot string

const (
	MealSlotLunch  MealSlot = "lunch"
	MealSlotDinner MealSlot = "dinner"
)

type ActorKind string

const (
	ActorKindSystem ActorKind = "system"
	ActorKindUser   ActorKind = "user"
)

// Actor identifies who requested a subscription state change: the system
// (automated transitions, sweeps) or a specific user/operator.
type Actor struct {
	Kind   ActorKind `json:"kind"`
	UserID string    `json:"user_id,omitempty"`
}

func SystemActor() Actor { return Actor{Kind: ActorKindSystem} }

func UserActor(id string) Actor { return Actor{Kind: ActorKindUser, UserID: id} }

// AuditValue renders the changed_by column value. Automated transitions
// always record "system"; user transitions record the user id.
func (a Actor) AuditValue() string {
	if a.Kind == ActorKindUser && a.UserID != "" {
		return a.UserID
	}
	return string(ActorKindSystem)
}
