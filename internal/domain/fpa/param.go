package fpa

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// FunctionParam is the create/update payload for a Function. It carries the
// variant tag plus the children matching the variant: record layouts for data
// functions, referenced data-function ids for transactional ones. The wire
// form mirrors TaggedFunction without the id: {"ALI": {"name": ..., "rlrs": [...]}}
// or {"EE": {"name": ..., "alrs": [{"id": ...}]}}.
type FunctionParam struct {
	Type        FunctionType
	Name        string
	Description *string
	RLRs        []RLR
	Refs        []uuid.UUID
}

type dataParamBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	RLRs        []RLR   `json:"rlrs"`
}

type refParam struct {
	ID uuid.UUID `json:"id"`
}

type transactionParamBody struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	ALRs        []refParam `json:"alrs"`
}

// UnmarshalJSON decodes the tagged payload form.
func (p *FunctionParam) UnmarshalJSON(data []byte) error {
	var envelope map[FunctionType]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope) != 1 {
		return fmt.Errorf("function payload must carry exactly one variant tag, got %d", len(envelope))
	}

	for tag, raw := range envelope {
		if !tag.Valid() {
			return fmt.Errorf("unknown function type %q", tag)
		}
		p.Type = tag
		if tag.IsData() {
			var body dataParamBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			p.Name = body.Name
			p.Description = body.Description
			p.RLRs = body.RLRs
			p.Refs = nil
		} else {
			var body transactionParamBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			p.Name = body.Name
			p.Description = body.Description
			p.RLRs = nil
			p.Refs = make([]uuid.UUID, 0, len(body.ALRs))
			for _, ref := range body.ALRs {
				p.Refs = append(p.Refs, ref.ID)
			}
		}
	}
	return nil
}

// MarshalJSON encodes the tagged payload form.
func (p FunctionParam) MarshalJSON() ([]byte, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("unknown function type %q", p.Type)
	}
	if p.Type.IsData() {
		return json.Marshal(map[FunctionType]dataParamBody{
			p.Type: {Name: p.Name, Description: p.Description, RLRs: layouts(p.RLRs)},
		})
	}
	refs := make([]refParam, 0, len(p.Refs))
	for _, id := range p.Refs {
		refs = append(refs, refParam{ID: id})
	}
	return json.Marshal(map[FunctionType]transactionParamBody{
		p.Type: {Name: p.Name, Description: p.Description, ALRs: refs},
	})
}

// Validate checks the structural rules the relational schema cannot express.
func (p *FunctionParam) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("unknown function type %q", p.Type)
	}
	if p.Name == "" {
		return fmt.Errorf("function name is required")
	}
	if p.Type.IsData() && len(p.Refs) > 0 {
		return fmt.Errorf("data functions do not carry references")
	}
	if !p.Type.IsData() && len(p.RLRs) > 0 {
		return fmt.Errorf("transactional functions do not carry record layouts")
	}
	return nil
}
