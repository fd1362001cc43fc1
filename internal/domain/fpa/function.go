package fpa

import "github.com/google/uuid"

// DER is a Data Element Reference, the smallest named unit of data within a
// record layout. Keyed by name within its owning RLR.
type DER struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// RLR is a Record Layout Reference: a named grouping of data elements within a
// data function. The name is the natural key, scoped to the owning function.
type RLR struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	DERs        []DER   `json:"ders"`
}

// Function is the closed union of the five FPA function variants.
// Implementations are *ALI, *AIE, *EE, *CE and *SE.
type Function interface {
	FunctionID() uuid.UUID
	FunctionType() FunctionType
	FunctionName() string
	sealed()
}

// DataFunction is the subset of Function variants a transactional function may
// reference: *ALI and *AIE.
type DataFunction interface {
	Function
	Layouts() []RLR
}

// ALI is an Internal Logical File: data maintained inside the application
// boundary, owning its record layouts.
type ALI struct {
	ID          uuid.UUID
	Name        string
	Description *string
	RLRs        []RLR
}

// AIE is an External Interface File: data referenced by the application but
// maintained elsewhere.
type AIE struct {
	ID          uuid.UUID
	Name        string
	Description *string
	RLRs        []RLR
}

// EE is an External Input: processing that crosses the boundary inward,
// referencing the data functions it maintains.
type EE struct {
	ID          uuid.UUID
	Name        string
	Description *string
	ALRs        []DataFunction
}

// CE is an External Inquiry: a retrieval with no derived data, referencing the
// data functions it reads.
type CE struct {
	ID          uuid.UUID
	Name        string
	Description *string
	ALRs        []DataFunction
}

// SE is an External Output: processing that sends derived data outward,
// referencing the data functions it reads.
type SE struct {
	ID          uuid.UUID
	Name        string
	Description *string
	ALRs        []DataFunction
}

func (f *ALI) FunctionID() uuid.UUID { return f.ID }
func (f *ALI) FunctionType() FunctionType { return TypeALI }
func (f *ALI) FunctionName() string { return f.Name }
func (f *ALI) Layouts() []RLR { return f.RLRs }
func (f *ALI) sealed() {}

func (f *AIE) FunctionID() uuid.UUID { return f.ID }
func (f *AIE) FunctionType() FunctionType { return TypeAIE }
func (f *AIE) FunctionName() string { return f.Name }
func (f *AIE) Layouts() []RLR { return f.RLRs }
func (f *AIE) sealed() {}

func (f *EE) FunctionID() uuid.UUID { return f.ID }
func (f *EE) FunctionType() FunctionType { return TypeEE }
func (f *EE) FunctionName() string { return f.Name }
func (f *EE) sealed() {}

func (f *CE) FunctionID() uuid.UUID { return f.ID }
func (f *CE) FunctionType() FunctionType { return TypeCE }
func (f *CE) FunctionName() string { return f.Name }
func (f *CE) sealed() {}

func (f *SE) FunctionID() uuid.UUID { return f.ID }
func (f *SE) FunctionType() FunctionType { return TypeSE }
func (f *SE) FunctionName() string { return f.Name }
func (f *SE) sealed() {}

// References returns the data functions referenced by a transactional
// function, or nil for data functions.
func References(f Function) []DataFunction {
	switch v := f.(type) {
	case *EE:
		return v.ALRs
	case *CE:
		return v.ALRs
	case *SE:
		return v.ALRs
	}
	return nil
}

// NewFunction builds the variant matching t with the given header fields.
// Children are attached by the caller.
func NewFunction(t FunctionType, id uuid.UUID, name string, description *string) Function {
	switch t {
	case TypeALI:
		return &ALI{ID: id, Name: name, Description: description}
	case TypeAIE:
		return &AIE{ID: id, Name: name, Description: description}
	case TypeEE:
		return &EE{ID: id, Name: name, Description: description}
	case TypeCE:
		return &CE{ID: id, Name: name, Description: description}
	case TypeSE:
		return &SE{ID: id, Name: name, Description: description}
	}
	return nil
}
