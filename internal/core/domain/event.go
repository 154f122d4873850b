package domain

// refBoundEvents are the workflow events that always run against a branch or tag ref.
var refBoundEvents = map[string]struct{}{
	"push":                        {},
	"pull_request":                {},
	"pull_request_target":         {},
	"pull_request_review":         {},
	"pull_request_review_comment": {},
	"schedule":                    {},
	"workflow_dispatch":           {},
	"workflow_run":                {},
	"workflow_call":               {},
	"repository_dispatch":         {},
	"merge_group":                 {},
	"release":                     {},
	"create":                      {},
	"delete":                      {},
	"deployment":                  {},
	"deployment_status":           {},
	"check_run":                   {},
	"check_suite":                 {},
	"registry_package":            {},
	"page_build":                  {},
	"status":                      {},
}

// IsRefBoundEvent reports whether the event type is tied to a branch or tag ref.
func IsRefBoundEvent(event string) bool {
	_, ok := refBoundEvents[event]
	return ok
}

// IsValidEvent reports whether a run triggered by event with the given ref may use the cache.
func IsValidEvent(event, ref string) bool {
	return IsRefBoundEvent(event) && ref != ""
}

// EventValidationMessage is the warning emitted when IsValidEvent is false.
func EventValidationMessage(event string) string {
	return "Event Validation Error: The event type " + event +
		" is not supported because it's not tied to a branch or tag ref."
}
