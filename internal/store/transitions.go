package store

import "gks/record-service/internal/models"

var transitionMap = map[string][]string{
	"approve": {models.StatusPendingReview},
	"reject":  {models.StatusPendingReview},
	"delete":  {models.StatusActive, models.StatusPendingReview, models.StatusApproved, models.StatusRejected},
}

// TransitionSources lists the statuses an action may move a record out
// of. The postgres store folds this into its conditional updates so the
// map stays the single source of transition legality.
func TransitionSources(action string) []string {
	allowed := transitionMap[action]
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
