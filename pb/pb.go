// Package pb holds the wire-format messages the backend package uses to
// persist table roots, plus small marshal helpers.
package pb

import "github.com/gogo/protobuf/proto"

// MustMarshal marshals m, panicking if marshaling fails. Marshal only
// fails on pathological inputs (e.g. a string field exceeding proto's
// length limits), never on valid TableRoot values, so callers that
// already hold a well-formed message prefer this over threading the
// error through.
func MustMarshal(m proto.Message) []byte {
	data, err := proto.Marshal(m)
	if err != nil {
		panic("pb: marshal: " + err.Error())
	}
	return data
}

// MustUnmarshal unmarshals data into m, panicking on failure. Intended
// for call sites that have already checksummed data and so only expect
// a decode error if the checksum itself was wrong.
func MustUnmarshal(data []byte, m proto.Message) {
	if err := proto.Unmarshal(data, m); err != nil {
		panic("pb: unmarshal: " + err.Error())
	}
}
