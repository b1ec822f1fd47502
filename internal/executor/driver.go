// internal/executor/driver.go
package executor

import (
	"context"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// Driver is the low-level interaction capability the executor drives in
// UI mode. Implementations address page elements through semantic
// annotations; the executor never sees a DOM selector.
//
// The call order within one execution is fixed: Navigate, then one Fill
// per argument, then Click, then ReadStatus. Each call blocks until the
// underlying operation settles, and a Driver instance is exclusively
// owned by one in-flight execution at a time.
type Driver interface {
	// Navigate loads the page the action lives on.
	Navigate(ctx context.Context, url string) error
	// Fill writes one argument value into the field annotated with the
	// given semantic name.
	Fill(ctx context.Context, field string, value any) error
	// Click triggers the submit control annotated with the action name.
	Click(ctx context.Context, action string) error
	// ReadStatus reads the page's post-submission status surface.
	ReadStatus(ctx context.Context) (map[string]any, error)
}

// BridgeCaller is the optional direct-mode capability: pages that embed
// an execution bridge let the runtime hand the whole request over instead
// of driving the UI. Drivers that support it implement this alongside
// Driver.
type BridgeCaller interface {
	CallAction(ctx context.Context, req *schemas.PlannerRequest) (map[string]any, error)
}
