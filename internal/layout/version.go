package layout

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the newest layout document schema this build understands.
// Documents declaring a newer version fail validation closed: the renderer
// would otherwise guess at semantics it does not have.
const SchemaVersion = "1.2.0"

var schemaVersion = semver.MustParse(SchemaVersion)

// CheckVersion reports whether a document-declared version is one this build
// can render. Versions must parse as full semver (documents are produced by
// the builder, never hand-typed), must not be newer than SchemaVersion, and
// must share its major version.
func CheckVersion(v string) error {
	if v == "" {
		return fmt.Errorf("version is required")
	}
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", v, err)
	}
	if parsed.Major() != schemaVersion.Major() {
		return fmt.Errorf("version %q is not compatible with schema %s", v, SchemaVersion)
	}
	if parsed.GreaterThan(schemaVersion) {
		return fmt.Errorf("version %q is newer than supported schema %s", v, SchemaVersion)
	}
	return nil
}
