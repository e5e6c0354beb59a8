package schema

import (
	"crypto/md5" //nolint: gosec
	"encoding/hex"
	"net/url"
	"path"
	"testing/fstest"
	"validator/pkg/serrors"

	"github.com/jacoelho/xsd"
)

// defaultSchemaName is used when the schema location carries no usable file name.
const defaultSchemaName = "schema.xsd"

// Fingerprint returns the lowercase hex MD5 digest of raw. It identifies a
// schema version for display and cache freshness, not for security.
func Fingerprint(raw []byte) string {
	sum := md5.Sum(raw) //nolint: gosec

	return hex.EncodeToString(sum[:])
}

// Compile compiles raw schema text into a validator. location only names the
// in-memory root document so engine messages point at something meaningful.
// Imports without a schemaLocation are skipped; anything the engine rejects
// is reported with the serrors.ErrSchemaParse kind.
func Compile(location string, raw []byte) (*xsd.Schema, error) {
	name := schemaName(location)
	fsys := fstest.MapFS{
		name: &fstest.MapFile{Data: raw},
	}

	opts := xsd.NewLoadOptions().WithAllowMissingImportLocations(true)
	compiled, err := xsd.LoadWithOptions(fsys, name, opts)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSchemaParse, err, "could not compile schema")
	}

	return compiled, nil
}

func schemaName(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}

	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return defaultSchemaName
	}

	return name
}
