// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import "encoding/json"

// Envelope generalizes the oneof-tagged callset message ProtoRpc relied on
// protobuf codegen for: a tag identifying which call or reply variant
// follows, plus its JSON-encoded fields. It assumes a JSON-compatible Codec
// (JSONCodec satisfies this); a generated schema codec would carry its own
// oneof discriminator instead and would not need Envelope at all.
type Envelope struct {
	Tag  uint32          `json:"tag"`
	Data json.RawMessage `json:"data"`
}

// DecodeEnvelope unmarshals an Envelope from payload using codec.
func DecodeEnvelope(codec Codec, payload []byte) (Envelope, error) {
	var env Envelope
	err := codec.Unmarshal(payload, &env)
	return env, err
}

// EncodeEnvelope marshals v under tag into an Envelope, then marshals the
// Envelope itself using codec.
func EncodeEnvelope(codec Codec, tag uint32, v any) ([]byte, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(Envelope{Tag: tag, Data: data})
}
