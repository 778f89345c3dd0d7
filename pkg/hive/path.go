package hive

import "strings"

var rootAliasMap = map[string][]string{
	"HKEY_LOCAL_MACHINE":  {"HKLM"},
	"HKEY_CLASSES_ROOT":   {"HKCR"},
	"HKEY_CURRENT_USER":   {"HKCU"},
	"HKEY_USERS":          {"HKU"},
	"HKEY_CURRENT_CONFIG": {"HKCC"},
}

var rootAliasList = []string{
	"HKEY_LOCAL_MACHINE", "HKLM",
	"HKEY_CLASSES_ROOT", "HKCR",
	"HKEY_CURRENT_USER", "HKCU",
	"HKEY_USERS", "HKU",
	"HKEY_CURRENT_CONFIG", "HKCC",
}

// normalizePath splits a user-supplied path into segments. Forward slashes
// are accepted as separators and empty segments are dropped.
func normalizePath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" || path == `\` || path == "/" {
		return nil
	}
	path = strings.ReplaceAll(path, "/", `\`)
	parts := strings.Split(path, `\`)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// stripRootPrefix removes a leading HKEY_* or HK* hive alias.
func stripRootPrefix(path string) string {
	upper := strings.ToUpper(path)
	for _, alias := range rootAliasList {
		if upper == alias {
			return ""
		}
		prefix := alias + `\`
		if strings.HasPrefix(upper, prefix) {
			return path[len(alias)+1:]
		}
	}
	return path
}

// rootNameMatches reports whether seg names the root key itself, directly
// or through one of its aliases.
func rootNameMatches(rootName, seg string) bool {
	if strings.EqualFold(rootName, seg) {
		return true
	}
	for canon, aliases := range rootAliasMap {
		if !strings.EqualFold(rootName, canon) {
			continue
		}
		for _, alias := range aliases {
			if strings.EqualFold(seg, alias) {
				return true
			}
		}
		break
	}
	return false
}

// indexKey is the path index form of segs.
func indexKey(segs []string) string {
	return strings.ToLower(strings.Join(segs, `\`))
}

// mountName is the last component of the base block's embedded file name,
// e.g. SOFTWARE for \REGISTRY\MACHINE\SOFTWARE.
func mountName(fileName string) string {
	if i := strings.LastIndexAny(fileName, `\/`); i >= 0 {
		return fileName[i+1:]
	}
	return fileName
}
