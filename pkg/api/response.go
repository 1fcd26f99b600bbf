// Package api defines the wire envelope shared by the clinicbook server and
// its clients. Every JSON endpoint responds with {"message": ..., "obj": ...};
// obj is null for pure acknowledgements.
package api

import "encoding/json"

// Response is the envelope wrapping every JSON payload.
type Response struct {
	Message string          `json:"message"`
	Obj     json.RawMessage `json:"obj,omitempty"`
}

// New builds an envelope around obj. It panics only on unmarshalable values,
// which would be a programming error.
func New(message string, obj interface{}) Response {
	if obj == nil {
		return Response{Message: message}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		panic(err)
	}
	return Response{Message: message, Obj: raw}
}

// Decode unmarshals the envelope's obj into v.
func (r Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Obj, v)
}
