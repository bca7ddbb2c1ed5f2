package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ExpandEnv expands environment references in s using compose-style rules:
//
//	$$                 a literal $
//	$VAR, ${VAR}       the value of VAR; unset is an error
//	${VAR:-fallback}   VAR when set and non-empty, else fallback
//	${VAR-fallback}    VAR when set, else fallback
//
// Every unset variable without a fallback is reported in one error matching
// ErrMissingEnv.
func ExpandEnv(s string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var missing []string
	out := os.Expand(s, func(ref string) string {
		if ref == "$" {
			return "$"
		}
		name, fallback, mode := splitFallback(ref)
		v, ok := os.LookupEnv(name)
		switch {
		case mode == ":-" && v == "":
			return fallback
		case mode == "-" && !ok:
			return fallback
		case !ok:
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return out, nil
}

// splitFallback splits NAME:-fallback and NAME-fallback references.
func splitFallback(ref string) (name, fallback, mode string) {
	if i := strings.Index(ref, ":-"); i >= 0 {
		return ref[:i], ref[i+2:], ":-"
	}
	if i := strings.IndexByte(ref, '-'); i >= 0 {
		return ref[:i], ref[i+1:], "-"
	}
	return ref, "", ""
}
