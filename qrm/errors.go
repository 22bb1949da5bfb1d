package qrm

import "fmt"

// InvariantBroken is raised for taxonomy/config bugs that must crash the
// process rather than be handled as a runtime condition (spec.md §7).
type InvariantBroken struct {
	Which string
}

func (e *InvariantBroken) Error() string {
	return fmt.Sprintf("qrm: invariant broken: %s", e.Which)
}
