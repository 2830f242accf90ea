package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encoding selects the wire format of event payloads.
type Encoding string

const (
	EncodingJSON     Encoding = "json"
	EncodingProtobuf Encoding = "protobuf"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeProtobuf = "application/x-protobuf"
)

// ParseEncoding maps a config value to an Encoding. Empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingProtobuf:
		return EncodingProtobuf, nil
	default:
		return "", fmt.Errorf("unknown event encoding %q", s)
	}
}

// encodeMsg builds a message for subject with v encoded as enc. Protobuf
// payloads are a google.protobuf.Struct mirroring the JSON document.
func encodeMsg(enc Encoding, subject string, v any) (*nats.Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Header.Set("Content-Type", contentTypeJSON)

	if enc == EncodingProtobuf {
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("encode %s: %w", subject, err)
		}
		st, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", subject, err)
		}
		if data, err = proto.Marshal(st); err != nil {
			return nil, fmt.Errorf("encode %s: %w", subject, err)
		}
		msg.Header.Set("Content-Type", contentTypeProtobuf)
	}
	msg.Data = data
	return msg, nil
}

// decodeMsg decodes a payload written by encodeMsg into v, using the
// Content-Type header to pick the format.
func decodeMsg(msg *nats.Msg, v any) error {
	data := msg.Data
	if msg.Header != nil && msg.Header.Get("Content-Type") == contentTypeProtobuf {
		var st structpb.Struct
		if err := proto.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Subject, err)
		}
		var err error
		if data, err = json.Marshal(st.AsMap()); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Subject, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Subject, err)
	}
	return nil
}
