package hive

import (
	"strings"

	"github.com/joshuapare/hiverecon/pkg/types"
)

// Hive type names returned by InferType.
const (
	TypeSystem     = "SYSTEM"
	TypeSoftware   = "SOFTWARE"
	TypeSAM        = "SAM"
	TypeSecurity   = "SECURITY"
	TypeNTUser     = "NTUSER"
	TypeUsrClass   = "USRCLASS"
	TypeDefault    = "DEFAULT"
	TypeComponents = "COMPONENTS"
	TypeBCD        = "BCD"
	TypeAmcache    = "AMCACHE"
	TypeDrivers    = "DRIVERS"
	TypeUnknown    = "UNKNOWN"
)

var fileNameTypes = map[string]string{
	"system":       TypeSystem,
	"software":     TypeSoftware,
	"sam":          TypeSAM,
	"security":     TypeSecurity,
	"ntuser.dat":   TypeNTUser,
	"usrclass.dat": TypeUsrClass,
	"default":      TypeDefault,
	"components":   TypeComponents,
	"bcd":          TypeBCD,
	"bcd-template": TypeBCD,
	"amcache.hve":  TypeAmcache,
	"drivers":      TypeDrivers,
}

// rootMarkers maps a hive type to root subkeys that all appear in it.
// Checked in order; the first full match wins.
var rootMarkers = []struct {
	typ  string
	keys []string
}{
	{TypeSystem, []string{"Select", "ControlSet001"}},
	{TypeSAM, []string{"SAM"}},
	{TypeSecurity, []string{"Policy"}},
	{TypeBCD, []string{"Objects", "Description"}},
	{TypeAmcache, []string{"Root"}},
	{TypeDrivers, []string{"DriverDatabase"}},
	{TypeSoftware, []string{"Microsoft", "Classes"}},
	{TypeUsrClass, []string{"Local Settings", "CLSID"}},
	{TypeNTUser, []string{"Software", "Environment"}},
	{TypeComponents, []string{"DerivedData"}},
}

// InferType guesses the hive type from the file name embedded in the base
// block and, failing that, from the root key's children.
func InferType(fileName string, root *types.Key) string {
	if t, ok := fileNameTypes[strings.ToLower(mountName(fileName))]; ok {
		return t
	}
	if root == nil {
		return TypeUnknown
	}
	for _, m := range rootMarkers {
		all := true
		for _, k := range m.keys {
			if root.SubKey(k) == nil {
				all = false
				break
			}
		}
		if all {
			return m.typ
		}
	}
	return TypeUnknown
}
