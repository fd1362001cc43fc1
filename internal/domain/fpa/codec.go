package fpa

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// The wire format is externally tagged: one object whose single key is the
// variant tag, e.g. {"ALI": {"id": ..., "name": ..., "rlrs": [...]}}.
// Transactional variants nest their referenced data functions the same way
// inside "alrs".

type dataBody struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	RLRs        []RLR     `json:"rlrs"`
}

type transactionBody struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	ALRs        []TaggedFunction `json:"alrs"`
}

// TaggedFunction wraps a Function with the externally tagged JSON codec.
type TaggedFunction struct {
	Function Function
}

// Tagged is a convenience constructor for TaggedFunction.
func Tagged(f Function) TaggedFunction {
	return TaggedFunction{Function: f}
}

// MarshalJSON encodes the wrapped function in the tagged wire form.
func (t TaggedFunction) MarshalJSON() ([]byte, error) {
	if t.Function == nil {
		return []byte("null"), nil
	}

	var body any
	switch f := t.Function.(type) {
	case *ALI:
		body = dataBody{ID: f.ID, Name: f.Name, Description: f.Description, RLRs: layouts(f.RLRs)}
	case *AIE:
		body = dataBody{ID: f.ID, Name: f.Name, Description: f.Description, RLRs: layouts(f.RLRs)}
	case *EE:
		body = transactionBody{ID: f.ID, Name: f.Name, Description: f.Description, ALRs: tagAll(f.ALRs)}
	case *CE:
		body = transactionBody{ID: f.ID, Name: f.Name, Description: f.Description, ALRs: tagAll(f.ALRs)}
	case *SE:
		body = transactionBody{ID: f.ID, Name: f.Name, Description: f.Description, ALRs: tagAll(f.ALRs)}
	default:
		return nil, fmt.Errorf("unknown function variant %T", t.Function)
	}

	return json.Marshal(map[FunctionType]any{t.Function.FunctionType(): body})
}

// UnmarshalJSON decodes the tagged wire form into the matching variant.
func (t *TaggedFunction) UnmarshalJSON(data []byte) error {
	var envelope map[FunctionType]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope) != 1 {
		return fmt.Errorf("function must carry exactly one variant tag, got %d", len(envelope))
	}

	for tag, raw := range envelope {
		switch tag {
		case TypeALI, TypeAIE:
			var body dataBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			f := NewFunction(tag, body.ID, body.Name, body.Description)
			if tag == TypeALI {
				f.(*ALI).RLRs = body.RLRs
			} else {
				f.(*AIE).RLRs = body.RLRs
			}
			t.Function = f
		case TypeEE, TypeCE, TypeSE:
			var body transactionBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			alrs := make([]DataFunction, 0, len(body.ALRs))
			for _, ref := range body.ALRs {
				data, ok := ref.Function.(DataFunction)
				if !ok {
					return fmt.Errorf("alrs may only carry ALI or AIE variants")
				}
				alrs = append(alrs, data)
			}
			f := NewFunction(tag, body.ID, body.Name, body.Description)
			switch v := f.(type) {
			case *EE:
				v.ALRs = alrs
			case *CE:
				v.ALRs = alrs
			case *SE:
				v.ALRs = alrs
			}
			t.Function = f
		default:
			return fmt.Errorf("unknown function type %q", tag)
		}
	}
	return nil
}

func layouts(rlrs []RLR) []RLR {
	if rlrs == nil {
		return []RLR{}
	}
	return rlrs
}

func tagAll(fns []DataFunction) []TaggedFunction {
	tagged := make([]TaggedFunction, 0, len(fns))
	for _, f := range fns {
		tagged = append(tagged, Tagged(f))
	}
	return tagged
}
