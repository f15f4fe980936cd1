package document

import _ "embed"

//go:embed sample.json
var sampleJSON []byte

// Sample returns a fresh copy of the built-in demo document.
func Sample() *Object {
	obj, err := Decode(sampleJSON)
	if err != nil {
		panic("document: embedded sample is invalid: " + err.Error())
	}
	return obj
}

// SampleJSON returns the raw text of the built-in demo document.
func SampleJSON() []byte {
	out := make([]byte, len(sampleJSON))
	copy(out, sampleJSON)
	return out
}
