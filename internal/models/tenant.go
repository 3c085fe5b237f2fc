package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription plans a tenant can be on. The only legal transition is
// PlanFree -> PlanPro, performed by the tenant upgrade operation.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// FreePlanNoteLimit is the maximum number of notes a free-plan tenant can hold.
const FreePlanNoteLimit = 3

type Tenant struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Slug             string    `json:"slug" db:"slug"`
	SubscriptionPlan string    `json:"subscription_plan" db:"subscription_plan"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
