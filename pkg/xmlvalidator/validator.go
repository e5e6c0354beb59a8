// Package xmlvalidator checks a document against a compiled schema snapshot
// and flattens every problem into human-readable messages.
package xmlvalidator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"validator/pkg/domain"

	xsderrors "github.com/jacoelho/xsd/errors"
	"github.com/jacoelho/xsd/pkg/xmlstream"
)

// Validate checks doc against snapshot and returns every violation in the
// order the schema engine reports them. A document that is not well-formed
// yields exactly one message describing the syntax error; that is a normal
// validation outcome, not a failure. Validation never stops at the first
// violation.
func Validate(doc []byte, snapshot *domain.SchemaSnapshot) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:            []string{},
		SchemaFingerprint: snapshot.Fingerprint,
	}

	if err := CheckWellFormed(doc); err != nil {
		result.Errors = append(result.Errors, err.Error())

		return result
	}

	err := snapshot.Schema.Validate(bytes.NewReader(doc))
	if err == nil {
		return result
	}

	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		result.Errors = append(result.Errors, err.Error())

		return result
	}
	for i := range violations {
		result.Errors = append(result.Errors, violations[i].Error())
	}

	return result
}

// CheckWellFormed reads doc to the end and returns the first XML syntax
// error, if any. An empty document is reported as missing its root element.
func CheckWellFormed(doc []byte) error {
	r, err := xmlstream.NewReader(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("could not create XML reader: %w", err)
	}

	for {
		if _, err := r.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err //nolint: wrapcheck
		}
	}
}
