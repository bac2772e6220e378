package catalog

// Action is a metered action kind. Each plan grants a per-billing-cycle
// allowance for every action.
type Action string

const (
	ActionSendEmail   Action = "send_email"
	ActionRewriteText Action = "rewrite_text"
)

// Plan describes a pricing plan offering. Plans are read-only from the
// metering core's perspective; the catalog is maintained out of band.
type Plan struct {
	Name               string `bson:"name" json:"name"`
	EmailsPerMonth     int64  `bson:"emailsPerMonth" json:"emailsPerMonth"`
	AIRewritesPerMonth int64  `bson:"aiRewrites" json:"aiRewrites"`
	PriceCents         int64  `bson:"price" json:"price"`
	StripePriceID      string `bson:"stripePriceId" json:"stripePriceId,omitempty"`
	Ordinal            int    `bson:"planNumber" json:"planNumber"`
}

// Allowance returns the monthly quota for the given action. The second
// return value is false for unknown action kinds.
func (p Plan) Allowance(action Action) (int64, bool) {
	switch action {
	case ActionSendEmail:
		return p.EmailsPerMonth, true
	case ActionRewriteText:
		return p.AIRewritesPerMonth, true
	default:
		return 0, false
	}
}
