package perrors

import (
	"fmt"
	"strings"
)

// FormatForCLI formats an error for terse terminal output.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	ae, ok := err.(*Error)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString(ae.Message)
	if len(ae.Details) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range ae.Details {
			if !first {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", k, v)
			first = false
		}
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, " [%s]", ae.Code)
	return sb.String()
}
