package account

import "time"

// DefaultPlan is the free tier every account starts on and falls back to
// after a subscription is cancelled.
const DefaultPlan = "welcome"

// Account represents a registered user. Email is the unique key; all
// lookups and updates are keyed by it.
//
// EmailsUsed and AIRewritesUsed are consumed counts for the current billing
// cycle. They are compared against the plan allowance and reset to zero when
// a renewal or plan change is reconciled. Version backs the optimistic
// concurrency scheme in Store.Update.
type Account struct {
	Email              string     `bson:"email" json:"email"`
	Name               string     `bson:"name" json:"name"`
	Phone              string     `bson:"phone" json:"phone"`
	PasswordHash       string     `bson:"passwordHash" json:"-"`
	PlanName           string     `bson:"planName" json:"planName"`
	EmailsUsed         int64      `bson:"emailsUsed" json:"emailsUsed"`
	AIRewritesUsed     int64      `bson:"aiRewritesUsed" json:"aiRewritesUsed"`
	SubscriptionStatus bool       `bson:"subscriptionStatus" json:"subscriptionStatus"`
	SubscriptionID     string     `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
	RenewalDate        *time.Time `bson:"renewalDate,omitempty" json:"renewalDate,omitempty"`
	Version            int64      `bson:"version" json:"-"`
	CreatedAt          time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// New returns an account on the default free plan with zero consumption.
func New(email, name, phone, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: passwordHash,
		PlanName:     DefaultPlan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsSubscribed reports whether the account has an active paid subscription.
func (a *Account) IsSubscribed() bool {
	return a.SubscriptionStatus && a.SubscriptionID != ""
}

// ResetUsage sets both consumption counters back to zero. The reset is an
// absolute assignment so that redelivered renewal events stay idempotent.
func (a *Account) ResetUsage() {
	a.EmailsUsed = 0
	a.AIRewritesUsed = 0
}
