// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import "encoding/json"

// Codec marshals and unmarshals callset and reply payloads. ProtoRpc
// generated this from a compiled .proto schema; a generated schema codec is
// out of scope here, so Codec is the seam a real one would plug into.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the reference Codec: plain encoding/json. It stands in for a
// generated protobuf codec wherever one isn't wired, and is adequate for the
// example callsets in this module.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
