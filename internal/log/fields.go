// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldEvent     = "event"

	// Configuration fields
	FieldKey    = "key"
	FieldPath   = "path"
	FieldSource = "source"

	// Analysis fields
	FieldColumn  = "column"
	FieldCut     = "cut"
	FieldFeature = "feature"
	FieldModel   = "model"

	// CI fields
	FieldJob    = "job"
	FieldBranch = "branch"
	FieldTag    = "tag"
)
