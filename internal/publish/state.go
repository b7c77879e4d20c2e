// SPDX-License-Identifier: MPL-2.0

package publish

// State represents the lifecycle phase of one publish attempt. An attempt
// advances linearly; StateFailed is reachable from every non-terminal phase.
type State int32

const (
	// StateIdle indicates the attempt has not started yet.
	StateIdle State = iota
	// StateValidate indicates preset and input validation is running.
	StateValidate
	// StateExportScan indicates the export has been triggered and its
	// output is being scanned and aggregated.
	StateExportScan
	// StateStage indicates destination paths are being resolved and the
	// version allocated.
	StateStage
	// StateCommit indicates files are being copied into the publish area.
	StateCommit
	// StateRegister indicates registry records are being created.
	StateRegister
	// StateDone indicates the attempt finished successfully (terminal).
	StateDone
	// StateFailed indicates the attempt aborted (terminal).
	StateFailed
)

// String returns a human-readable state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidate:
		return "validate"
	case StateExportScan:
		return "export-scan"
	case StateStage:
		return "stage"
	case StateCommit:
		return "commit"
	case StateRegister:
		return "register"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
