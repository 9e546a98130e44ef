package grpcapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/LavaJover/kol-payout-service/internal/delivery/presenter"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// getter exposes scalar struct fields to the shared parameter parsers.
func getter(req *structpb.Struct) presenter.Getter {
	return func(key string) string {
		v, ok := req.GetFields()[key]
		if !ok {
			return ""
		}
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			return strings.TrimSpace(kind.StringValue)
		case *structpb.Value_NumberValue:
			return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
		case *structpb.Value_BoolValue:
			return strconv.FormatBool(kind.BoolValue)
		}
		return ""
	}
}

// decodeStruct maps a request struct onto a JSON-tagged Go value; unknown
// fields are rejected.
func decodeStruct(req *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// toStruct renders a JSON-tagged view as a response struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
