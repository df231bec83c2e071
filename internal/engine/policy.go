package engine

import "github.com/slipway-io/slipway/internal/config"

// Policy controls how the engine reacts when an entry in a stage fails.
type Policy struct {
	AbortOnFailure bool
}

// Release-stage entries are the actual publish actions. They are independent
// of one another, so one publisher failing must not stop the others from
// attempting. Every other stage gates the run and aborts it on failure.
var stagePolicies = map[config.Stage]Policy{
	config.StageBuild:   {AbortOnFailure: true},
	config.StageTest:    {AbortOnFailure: true},
	config.StageRelease: {AbortOnFailure: false},
}

// PolicyFor returns the failure policy for a stage. Unknown stages abort,
// so a stage added to the enum without a policy decision fails loudly.
func PolicyFor(stage config.Stage) Policy {
	if policy, ok := stagePolicies[stage]; ok {
		return policy
	}
	return Policy{AbortOnFailure: true}
}
