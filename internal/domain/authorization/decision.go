package authorization

import (
	"github.com/google/uuid"

	"github.com/nexahealth/priorauth/internal/domain/catalog"
)

// EvaluationInput is everything the decision engine needs: the requested
// services with their catalog costs, the active contract between the
// request's HMO and hospital (nil when none), and the coverage rules of the
// request's plan.
type EvaluationInput struct {
	Services []*catalog.Service
	Contract *catalog.Contract
	Rules    []*catalog.CoverageRule
}

// Decision is the engine's verdict. Reason names the first failed condition
// for the review trail; it is empty when AutoApprove is true.
type Decision struct {
	AutoApprove bool
	Reason      string
}

// Evaluate decides whether a request qualifies for automatic approval.
// Every requested service must pass all conditions; the decision is
// all-or-nothing across the request. Not auto-approvable is a normal
// outcome, never an error.
//
// Conditions, per service:
//  1. an active contract exists between the request's HMO and hospital,
//  2. the contract covers the service,
//  3. a coverage rule exists for (plan, service),
//  4. the service cost does not exceed the rule's threshold,
//  5. the rule does not require pre-authorization.
//
// An empty service set is not auto-approvable: create rejects empty
// requests, and the engine refuses them independently rather than
// approving vacuously.
func Evaluate(in EvaluationInput) Decision {
	if len(in.Services) == 0 {
		return Decision{Reason: "no services requested"}
	}
	if in.Contract == nil {
		return Decision{Reason: "no active contract between HMO and hospital"}
	}

	rulesByService := make(map[uuid.UUID]*catalog.CoverageRule, len(in.Rules))
	for _, rule := range in.Rules {
		rulesByService[rule.ServiceID] = rule
	}

	for _, svc := range in.Services {
		if !in.Contract.Covers(svc.ID) {
			return Decision{Reason: "service " + svc.Name + " not covered by contract"}
		}
		rule, ok := rulesByService[svc.ID]
		if !ok {
			return Decision{Reason: "no coverage rule for service " + svc.Name}
		}
		if svc.Cost > rule.AutoApprovalThreshold {
			return Decision{Reason: "service " + svc.Name + " exceeds auto-approval threshold"}
		}
		if rule.RequiresPreAuth {
			return Decision{Reason: "service " + svc.Name + " requires pre-authorization"}
		}
	}

	return Decision{AutoApprove: true}
}
