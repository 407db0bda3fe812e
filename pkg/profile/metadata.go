package profile

// userFrom marks a document as user-authored rather than a factory default.
// The engine's CLI misbehaves when "from" is absent or malformed, so the
// injector does not trust user-supplied values for it.
const userFrom = "User"

// InjectMetadata adds the metadata keys the engine's CLI mode requires to
// recognize the document's role: the "type" discriminator for the category
// and the "from" origin marker.
//
// Both keys are overwritten unconditionally; all other keys pass through
// untouched. The input must already be resolved; this step has no failure
// mode of its own.
func InjectMetadata(category Category, doc *Document) *Document {
	doc.SetString(KeyType, category.EngineType())
	doc.SetString(KeyFrom, userFrom)
	return doc
}
